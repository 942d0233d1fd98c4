package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/internal/services/agentresults"
	"PulseGateway/pkg/cache"
	pkgkafka "PulseGateway/pkg/kafka"
	xlogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/queue"
)

const (
	agentResultsCacheKey = "agent:latest"

	// MsgTypeCareAlert is the queue message type for alerts bound for the care backend.
	MsgTypeCareAlert = "care_alert_forward"

	sourceKafka  = "kafka"
	sourceWorker = "worker"
	sourceDemo   = "demo"
)

// AgentResultsUseCase serves the worker's analysis. Kafka-delivered results win,
// then the static results file, then the built-in demo.
// It also consumes the results topic.
type AgentResultsUseCase struct {
	topic      string
	static     domrepo.AgentResultsSource
	cache      cache.Service
	ttl        time.Duration
	outbox     queue.Publisher
	hospitalID int
	metrics    domrepo.Metrics
	logger     *xlogger.Logger
	now        func() time.Time

	mu        sync.RWMutex
	latest    *models.AgentResults
	forwarded map[string]struct{}
}

func NewAgentResultsUseCase(
	topic string,
	static domrepo.AgentResultsSource,
	c cache.Service,
	ttl time.Duration,
	outbox queue.Publisher,
	hospitalID int,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
) *AgentResultsUseCase {
	return &AgentResultsUseCase{
		topic:      topic,
		static:     static,
		cache:      c,
		ttl:        ttl,
		outbox:     outbox,
		hospitalID: hospitalID,
		metrics:    metrics,
		logger:     logger.With("agent_results"),
		now:        time.Now,
		forwarded:  make(map[string]struct{}),
	}
}

func (uc *AgentResultsUseCase) Topic() string { return uc.topic }

// Handle accepts one results document from Kafka; older documents are ignored.
func (uc *AgentResultsUseCase) Handle(ctx context.Context, b []byte) error {
	var res models.AgentResults
	if err := json.Unmarshal(b, &res); err != nil {
		uc.metrics.RecordError("agent_results_unmarshal")
		return fmt.Errorf("decode agent results: %w", err)
	}
	if res.Metadata.AnalysisID == "" {
		uc.metrics.RecordError("agent_results_invalid")
		return fmt.Errorf("agent results without analysis_id")
	}

	uc.mu.Lock()
	if uc.latest != nil && res.GeneratedAt().Before(uc.latest.GeneratedAt()) {
		uc.mu.Unlock()
		uc.logger.Debug("stale agent results ignored", xlogger.String("analysis_id", res.Metadata.AnalysisID))
		return nil
	}
	uc.latest = &res
	uc.mu.Unlock()

	uc.logger.Info("agent results received",
		xlogger.String("analysis_id", res.Metadata.AnalysisID),
		xlogger.Int("alerts", len(res.Alerts)))
	return uc.forward(ctx, &res)
}

// Get returns the best available results with the notification for the most severe alert.
func (uc *AgentResultsUseCase) Get(ctx context.Context) *models.AgentResultsView {
	view := &models.AgentResultsView{FetchedAt: uc.now(), DataSource: models.DataSourceLive}

	uc.mu.RLock()
	latest := uc.latest
	uc.mu.RUnlock()

	switch {
	case latest != nil:
		view.Results = *latest
		view.Source = sourceKafka
	default:
		res, err := uc.loadStatic(ctx)
		if err == nil {
			view.Results = *res
			view.Source = sourceWorker
			if ferr := uc.forward(ctx, res); ferr != nil {
				uc.logger.Warn("forward agent alerts failed", xlogger.Error(ferr))
			}
			break
		}
		uc.logger.Warn("worker results unavailable, serving demo", xlogger.Error(err))
		uc.metrics.RecordFallback("agent_results")
		view.Results = agentresults.Demo(uc.now())
		view.Source = sourceDemo
		view.DataSource = models.DataSourceFallback
	}

	view.Notification = Notification(view.Results)
	return view
}

// Refresh drops the cached static results and reloads them.
func (uc *AgentResultsUseCase) Refresh(ctx context.Context) error {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, agentResultsCacheKey)
	}
	res, err := uc.loadStatic(ctx)
	if err != nil {
		return err
	}
	return uc.forward(ctx, res)
}

func (uc *AgentResultsUseCase) loadStatic(ctx context.Context) (*models.AgentResults, error) {
	if uc.static == nil {
		return nil, fmt.Errorf("no static results source")
	}
	res, _, err := cache.Remember(ctx, uc.cache, agentResultsCacheKey, uc.ttl, uc.static.Latest)
	return res, err
}

// forward queues each alert of a results document once. Alerts are tracked
// individually so a partial failure only retries the ones not yet queued.
func (uc *AgentResultsUseCase) forward(ctx context.Context, res *models.AgentResults) error {
	if uc.outbox == nil || len(res.Alerts) == 0 {
		return nil
	}
	id := res.Metadata.AnalysisID
	queued := 0
	for i, a := range res.Alerts {
		key := forwardKey(id, i, a)
		if !uc.reserveForward(key) {
			continue
		}
		if err := uc.outbox.PublishMessage(ctx, MsgTypeCareAlert, CareAlertFromAgent(uc.hospitalID, a)); err != nil {
			uc.mu.Lock()
			delete(uc.forwarded, key)
			uc.mu.Unlock()
			return fmt.Errorf("enqueue care alert %s: %w", key, err)
		}
		queued++
	}
	if queued > 0 {
		uc.logger.Info("agent alerts queued for care backend",
			xlogger.String("analysis_id", id),
			xlogger.Int("count", queued))
	}
	return nil
}

func (uc *AgentResultsUseCase) reserveForward(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, done := uc.forwarded[key]; done {
		return false
	}
	uc.forwarded[key] = struct{}{}
	return true
}

func forwardKey(analysisID string, i int, a models.AgentAlert) string {
	if a.ID != "" {
		return analysisID + "/" + a.ID
	}
	return fmt.Sprintf("%s/#%d", analysisID, i)
}

// CareAlertFromAgent maps an agent alert to the care backend's alert body.
func CareAlertFromAgent(hospitalID int, a models.AgentAlert) models.CareAlertCreate {
	metrics := a.Metrics
	if metrics == nil {
		metrics = map[string]interface{}{}
	}
	return models.CareAlertCreate{
		HospitalID: hospitalID,
		Severity:   strings.ToUpper(a.Severity),
		Title:      a.Title,
		Message:    a.Message,
		ActionJSON: map[string]interface{}{"type": a.Type, "metrics": metrics},
		Status:     "open",
	}
}

// Notification picks the first critical or high alert.
func Notification(res models.AgentResults) *models.AgentNotification {
	for _, a := range res.Alerts {
		switch models.ParseSeverity(a.Severity) {
		case models.SeverityCritical, models.SeverityHigh:
			return &models.AgentNotification{
				AlertID: a.ID,
				Title:   "PulseAI Alert: " + a.Title,
				Body:    a.Message,
			}
		}
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*AgentResultsUseCase)(nil)
