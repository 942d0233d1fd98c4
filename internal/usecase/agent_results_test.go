package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	"PulseGateway/pkg/cache"
	xlogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/queue"
)

func agentDoc(id, ts string, alerts ...models.AgentAlert) models.AgentResults {
	return models.AgentResults{
		Metadata: models.AgentMetadata{AnalysisID: id, Timestamp: ts},
		Alerts:   alerts,
	}
}

var surgeAlert = models.AgentAlert{
	ID:       "ALERT_1",
	Type:     "patient_surge",
	Severity: "high",
	Title:    "Patient Surge",
	Message:  "Surge expected",
	Metrics:  map[string]interface{}{"surge_percentage": 40.0},
}

func newAgentResults(static domrepo.AgentResultsSource, c cache.Service, outbox queue.Publisher) *AgentResultsUseCase {
	return NewAgentResultsUseCase("pulse.agent.results", static, c, time.Minute, outbox, 3, domrepo.NopMetrics{}, xlogger.NewNop())
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestAgentResultsHandle(t *testing.T) {
	outbox := &fakeOutbox{}
	uc := newAgentResults(nil, nil, outbox)
	ctx := context.Background()
	assert.Equal(t, "pulse.agent.results", uc.Topic())

	assert.Error(t, uc.Handle(ctx, []byte("{")))
	assert.Error(t, uc.Handle(ctx, mustJSON(t, agentDoc("", "2024-03-07T10:00:00Z"))))

	require.NoError(t, uc.Handle(ctx, mustJSON(t, agentDoc("A2", "2024-03-07T10:00:00Z", surgeAlert))))
	require.NoError(t, uc.Handle(ctx, mustJSON(t, agentDoc("A1", "2024-03-07T09:00:00Z"))))

	view := uc.Get(ctx)
	assert.Equal(t, "kafka", view.Source)
	assert.Equal(t, "A2", view.Results.Metadata.AnalysisID, "older documents are ignored")
	assert.Equal(t, models.DataSourceLive, view.DataSource)
	require.NotNil(t, view.Notification)
	assert.Equal(t, "PulseAI Alert: Patient Surge", view.Notification.Title)

	require.NoError(t, uc.Handle(ctx, mustJSON(t, agentDoc("A2", "2024-03-07T10:00:00Z", surgeAlert))))
	assert.Equal(t, 1, outbox.count(), "each analysis is forwarded once")
	assert.Equal(t, MsgTypeCareAlert, outbox.msgs[0].msgType)
}

func TestAgentResultsStaticSourceIsCached(t *testing.T) {
	doc := agentDoc("W1", "2024-03-07T08:00:00Z", surgeAlert)
	static := &fakeStaticSource{res: &doc}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	outbox := &fakeOutbox{}
	uc := newAgentResults(static, mc, outbox)

	view := uc.Get(context.Background())
	assert.Equal(t, "worker", view.Source)
	assert.Equal(t, "W1", view.Results.Metadata.AnalysisID)
	uc.Get(context.Background())
	assert.Equal(t, 1, static.calls)
	assert.Equal(t, 1, outbox.count())

	require.NoError(t, uc.Refresh(context.Background()))
	assert.Equal(t, 2, static.calls)
	assert.Equal(t, 1, outbox.count())
}

func TestAgentResultsDemoFallback(t *testing.T) {
	outbox := &fakeOutbox{}
	uc := newAgentResults(&fakeStaticSource{err: errUpstream}, nil, outbox)

	view := uc.Get(context.Background())
	assert.Equal(t, "demo", view.Source)
	assert.Equal(t, models.DataSourceFallback, view.DataSource)
	assert.NotEmpty(t, view.Results.Alerts)
	assert.NotNil(t, view.Notification)
	assert.Zero(t, outbox.count(), "demo alerts are never forwarded")

	assert.Error(t, uc.Refresh(context.Background()))
}

func TestAgentResultsForwardRetriesAfterFailure(t *testing.T) {
	outbox := &fakeOutbox{err: errUpstream}
	uc := newAgentResults(nil, nil, outbox)
	doc := mustJSON(t, agentDoc("A1", "2024-03-07T10:00:00Z", surgeAlert))

	assert.Error(t, uc.Handle(context.Background(), doc))
	outbox.err = nil
	require.NoError(t, uc.Handle(context.Background(), doc))
	assert.Equal(t, 1, outbox.count())
}

func TestAgentResultsForwardPartialFailureNoDuplicates(t *testing.T) {
	outbox := &fakeOutbox{failOn: 2}
	uc := newAgentResults(nil, nil, outbox)
	bedAlert := surgeAlert
	bedAlert.ID = "beds-1"
	bedAlert.Title = "Beds"
	doc := mustJSON(t, agentDoc("A1", "2024-03-07T10:00:00Z", surgeAlert, bedAlert))

	assert.Error(t, uc.Handle(context.Background(), doc))
	assert.Equal(t, 1, outbox.count())

	require.NoError(t, uc.Handle(context.Background(), doc))
	require.NoError(t, uc.Handle(context.Background(), doc))
	require.Equal(t, 2, outbox.count(), "only the failed alert is queued again")
	assert.Equal(t, "Beds", outbox.msgs[1].payload.(models.CareAlertCreate).Title)
}

func TestCareAlertFromAgent(t *testing.T) {
	got := CareAlertFromAgent(3, surgeAlert)
	assert.Equal(t, 3, got.HospitalID)
	assert.Equal(t, "HIGH", got.Severity)
	assert.Equal(t, "open", got.Status)
	assert.Equal(t, "patient_surge", got.ActionJSON["type"])
	assert.Equal(t, surgeAlert.Metrics, got.ActionJSON["metrics"])

	bare := CareAlertFromAgent(1, models.AgentAlert{Severity: "critical"})
	assert.Equal(t, map[string]interface{}{}, bare.ActionJSON["metrics"])
}

func TestNotification(t *testing.T) {
	assert.Nil(t, Notification(agentDoc("x", "", models.AgentAlert{Severity: "medium"})))

	n := Notification(agentDoc("x", "",
		models.AgentAlert{ID: "1", Severity: "low", Title: "minor"},
		models.AgentAlert{ID: "2", Severity: "CRITICAL", Title: "Beds", Message: "ICU full"},
		models.AgentAlert{ID: "3", Severity: "high", Title: "later"},
	))
	require.NotNil(t, n)
	assert.Equal(t, "2", n.AlertID)
	assert.Equal(t, "PulseAI Alert: Beds", n.Title)
	assert.Equal(t, "ICU full", n.Body)
}
