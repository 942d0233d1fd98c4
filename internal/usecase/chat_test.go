package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/internal/service/ratelimit"
	xhttp "PulseGateway/pkg/http"
	xlogger "PulseGateway/pkg/logger"
)

func echoChat(_ context.Context, msg string) (string, error) { return "re: " + msg, nil }

func TestChatSendStartsConversation(t *testing.T) {
	uc := NewChatUseCase(&fakePulse{chatFn: echoChat}, nil, 5, 1, 0, domrepo.NopMetrics{}, xlogger.NewNop())

	reply, err := uc.Send(context.Background(), "c1", models.ChatRequest{Message: "  outlook?  "})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.ConversationID)
	assert.Equal(t, models.DataSourceLive, reply.DataSource)
	assert.Equal(t, "re: outlook?", reply.Message.Content)
	assert.Equal(t, models.ChatRoleAssistant, reply.Message.Role)

	conv, ok := uc.History(reply.ConversationID)
	require.True(t, ok)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, models.ChatGreeting, conv.Messages[0].Content)
	assert.Equal(t, models.ChatRoleUser, conv.Messages[1].Role)
	assert.Equal(t, "outlook?", conv.Messages[1].Content)
	assert.NotEqual(t, conv.Messages[1].ID, conv.Messages[2].ID)
}

func TestChatUpstreamFailure(t *testing.T) {
	blank := func(context.Context, string) (string, error) { return " ", nil }
	for name, api := range map[string]*fakePulse{"error": {}, "blank answer": {chatFn: blank}} {
		t.Run(name, func(t *testing.T) {
			uc := NewChatUseCase(api, nil, 5, 1, 0, domrepo.NopMetrics{}, xlogger.NewNop())
			reply, err := uc.Send(context.Background(), "c1", models.ChatRequest{Message: "hi"})
			require.NoError(t, err)
			assert.Equal(t, models.ChatUnavailable, reply.Message.Content)
			assert.Equal(t, models.DataSourceFallback, reply.DataSource)
		})
	}
}

func TestChatRejects(t *testing.T) {
	uc := NewChatUseCase(&fakePulse{chatFn: echoChat}, ratelimit.New(), 1, 0.001, 0, domrepo.NopMetrics{}, xlogger.NewNop())
	var appErr *xhttp.AppError

	_, err := uc.Send(context.Background(), "c1", models.ChatRequest{Message: "   "})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	_, err = uc.Send(context.Background(), "c1", models.ChatRequest{Message: "one"})
	require.NoError(t, err)
	_, err = uc.Send(context.Background(), "c1", models.ChatRequest{Message: "two"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)

	_, err = uc.Send(context.Background(), "c2", models.ChatRequest{Message: "other client"})
	assert.NoError(t, err)
}

func TestChatHistoryIsBounded(t *testing.T) {
	uc := NewChatUseCase(&fakePulse{chatFn: echoChat}, nil, 5, 1, 4, domrepo.NopMetrics{}, xlogger.NewNop())
	conv := uc.Start()

	for _, m := range []string{"a", "b", "c"} {
		_, err := uc.Send(context.Background(), "c1", models.ChatRequest{ConversationID: conv.ID, Message: m})
		require.NoError(t, err)
	}

	got, ok := uc.History(conv.ID)
	require.True(t, ok)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "b", got.Messages[0].Content)
	assert.Equal(t, "re: c", got.Messages[3].Content)

	_, ok = uc.History("nope")
	assert.False(t, ok)
}

func TestChatUnknownConversation(t *testing.T) {
	uc := NewChatUseCase(&fakePulse{chatFn: echoChat}, nil, 5, 1, 0, domrepo.NopMetrics{}, xlogger.NewNop())

	_, err := uc.Send(context.Background(), "c1", models.ChatRequest{ConversationID: "missing", Message: "hi"})
	var appErr *xhttp.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	_, ok := uc.History("missing")
	assert.False(t, ok)
}

func TestChatEvictsLeastRecentConversation(t *testing.T) {
	uc := NewChatUseCase(&fakePulse{chatFn: echoChat}, nil, 5, 1, 0, domrepo.NopMetrics{}, xlogger.NewNop())
	uc.maxConvs = 2
	at := time.Date(2025, 1, 7, 8, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { at = at.Add(time.Second); return at }

	first := uc.Start()
	second := uc.Start()
	_, err := uc.Send(context.Background(), "c1", models.ChatRequest{ConversationID: first.ID, Message: "still here"})
	require.NoError(t, err)

	third := uc.Start()

	_, ok := uc.History(second.ID)
	assert.False(t, ok)
	_, ok = uc.History(first.ID)
	assert.True(t, ok)
	_, ok = uc.History(third.ID)
	assert.True(t, ok)

	for i := 0; i < 5; i++ {
		_, err := uc.Send(context.Background(), "c1", models.ChatRequest{Message: "new"})
		require.NoError(t, err)
	}
	uc.mu.Lock()
	assert.Len(t, uc.convs, 2)
	uc.mu.Unlock()
}
