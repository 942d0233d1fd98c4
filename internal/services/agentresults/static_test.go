package agentresults

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/worker/output/latest_results.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"metadata": {"timestamp": "2025-01-07T09:00:00", "analysis_id": "RUN_1"}, "alerts": [{"id": "A", "severity": "critical", "title": "t"}]}`)
	}))
	defer srv.Close()

	res, err := NewStaticSource(srv.URL+"/worker/output/latest_results.json", nil, nil).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RUN_1", res.Metadata.AnalysisID)
	assert.Equal(t, time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC), res.GeneratedAt())

	_, err = NewStaticSource(srv.URL+"/missing.json", nil, nil).Latest(context.Background())
	assert.Error(t, err)
}

func TestDemo(t *testing.T) {
	now := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	d := Demo(now)
	assert.True(t, strings.HasPrefix(d.Metadata.AnalysisID, "DEMO_"))
	assert.Equal(t, 134.0, d.Predictions.SurgePrediction.PredictedSurgePercentage)
	require.Len(t, d.Alerts, 2)
	assert.Equal(t, "ALERT_1", d.Alerts[0].ID)
	assert.Equal(t, "2025-01-10T00:00:00Z", d.Predictions.SurgePrediction.PeakDate)
	assert.Equal(t, 2, d.Summary.TotalRecommendations)
}
