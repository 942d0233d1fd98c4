package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/internal/service/ratelimit"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
)

// ChatUseCase relays messages to the assistant and keeps per-conversation history.
type ChatUseCase struct {
	api      domrepo.PulseAPI
	limiter  *ratelimit.Limiter
	capacity float64
	perSec   float64
	history  int
	metrics  domrepo.Metrics
	logger   *xlogger.Logger
	now      func() time.Time

	mu       sync.Mutex
	convs    map[string]*conversation
	maxConvs int
}

type conversation struct {
	msgs    []models.ChatMessage
	touched time.Time
}

// maxConversations bounds the in-memory store; the least recently active
// conversation is dropped first.
const maxConversations = 1000

func NewChatUseCase(
	api domrepo.PulseAPI,
	limiter *ratelimit.Limiter,
	capacity, perSec float64,
	history int,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
) *ChatUseCase {
	if history <= 0 {
		history = 50
	}
	return &ChatUseCase{
		api:      api,
		limiter:  limiter,
		capacity: capacity,
		perSec:   perSec,
		history:  history,
		metrics:  metrics,
		logger:   logger.With("chat"),
		now:      time.Now,
		convs:    make(map[string]*conversation),
		maxConvs: maxConversations,
	}
}

// Start opens a conversation seeded with the assistant greeting.
func (uc *ChatUseCase) Start() models.Conversation {
	id := uuid.NewString()
	greeting := uc.message(models.ChatRoleAssistant, models.ChatGreeting)

	uc.mu.Lock()
	uc.evictLocked()
	uc.convs[id] = &conversation{msgs: []models.ChatMessage{greeting}, touched: uc.now()}
	uc.mu.Unlock()
	return models.Conversation{ID: id, Messages: []models.ChatMessage{greeting}}
}

// History returns a copy of a conversation.
func (uc *ChatUseCase) History(id string) (models.Conversation, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	c, ok := uc.convs[id]
	if !ok {
		return models.Conversation{}, false
	}
	return models.Conversation{ID: id, Messages: append([]models.ChatMessage(nil), c.msgs...)}, true
}

func (uc *ChatUseCase) exists(id string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.convs[id]
	return ok
}

// evictLocked drops the least recently active conversations until there is
// room for one more.
func (uc *ChatUseCase) evictLocked() {
	for len(uc.convs) >= uc.maxConvs && len(uc.convs) > 0 {
		var oldest string
		var at time.Time
		for id, c := range uc.convs {
			if oldest == "" || c.touched.Before(at) {
				oldest, at = id, c.touched
			}
		}
		delete(uc.convs, oldest)
	}
}

// Send relays one user message. Upstream failures become the canned apology
// with a fallback data source rather than an error.
func (uc *ChatUseCase) Send(ctx context.Context, clientKey string, req models.ChatRequest) (*models.ChatReply, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, xhttp.BadRequestError("Message must not be empty")
	}
	if req.ConversationID != "" && !uc.exists(req.ConversationID) {
		return nil, xhttp.NotFoundErrorf("conversation %s not found", req.ConversationID)
	}
	if uc.limiter != nil && !uc.limiter.Allow("chat:"+clientKey, uc.capacity, uc.perSec) {
		uc.metrics.RecordError("chat_rate_limited")
		return nil, xhttp.TooManyRequestsError("Too many chat messages, slow down")
	}

	id := req.ConversationID
	if id == "" {
		id = uc.Start().ID
	}
	uc.append(id, uc.message(models.ChatRoleUser, text))

	reply := &models.ChatReply{ConversationID: id, DataSource: models.DataSourceLive}
	answer, err := uc.api.Chat(ctx, text)
	if err != nil || strings.TrimSpace(answer) == "" {
		uc.logger.Warn("assistant unavailable", xlogger.String("conversation_id", id), xlogger.Error(err))
		uc.metrics.RecordFallback("chat")
		answer = models.ChatUnavailable
		reply.DataSource = models.DataSourceFallback
	}
	reply.Message = uc.message(models.ChatRoleAssistant, answer)
	uc.append(id, reply.Message)
	return reply, nil
}

func (uc *ChatUseCase) message(role models.ChatRole, content string) models.ChatMessage {
	return models.ChatMessage{ID: uuid.NewString(), Role: role, Content: content, Timestamp: uc.now()}
}

func (uc *ChatUseCase) append(id string, m models.ChatMessage) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	c, ok := uc.convs[id]
	if !ok {
		uc.evictLocked()
		c = &conversation{}
		uc.convs[id] = c
	}
	c.msgs = append(c.msgs, m)
	if len(c.msgs) > uc.history {
		c.msgs = c.msgs[len(c.msgs)-uc.history:]
	}
	c.touched = uc.now()
}
