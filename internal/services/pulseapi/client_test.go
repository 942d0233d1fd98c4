package pulseapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"PulseGateway/internal/domain/models"
	xhttp "PulseGateway/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, xhttp.NewClient(), nil)
}

func TestForecastSendsParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/forecast", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 14.0, body["horizon_days"])
		assert.Equal(t, 300.0, body["aqi_override"])
		assert.Equal(t, true, body["is_festival"])
		_, _ = io.WriteString(w, `{"forecasts": [{"ds": "2025-01-07", "yhat": 1}]}`)
	})

	aqi := 300.0
	f, err := c.Forecast(context.Background(), models.ForecastParams{HorizonDays: 14, AQIOverride: &aqi, IsFestival: true})
	require.NoError(t, err)
	assert.Len(t, f.Points, 1)
}

func TestEvaluateDecisionOverride(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "250", r.URL.Query().Get("aqi_override"))
		_, _ = io.WriteString(w, `{"operational_risk_score": 40, "actions": {}}`)
	})
	aqi := 250.0
	d, err := c.EvaluateDecision(context.Background(), &aqi)
	require.NoError(t, err)
	assert.Equal(t, 40.0, d.RiskScore)
}

func TestScenariosHorizon(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("horizon_days"))
		_, _ = io.WriteString(w, `{"baseline": []}`)
	})
	set, err := c.Scenarios(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 30, set.HorizonDays)
}

func TestApproveFillsActionID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "success", "message": "Action approved successfully"}`)
	})
	res, err := c.ApproveAction(context.Background(), models.ApproveActionRequest{ActionID: "a1", Category: "staffing", Action: "x"})
	require.NoError(t, err)
	assert.Equal(t, "a1", res.ActionID)
	assert.Equal(t, "success", res.Status)
}

func TestApproveIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.ApproveAction(context.Background(), models.ApproveActionRequest{ActionID: "a1", Category: "staffing", Action: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChatErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Chat(context.Background(), "hi")
	assert.Error(t, err)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"response": "Outlook is stable."}`)
	})
	reply, err := c.Chat(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Outlook is stable.", reply)
}
