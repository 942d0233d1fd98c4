package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	r := NewWithRegisterer(prometheus.NewRegistry())

	r.RecordUpstream("pulse", "kpi", nil)
	r.RecordUpstream("pulse", "kpi", errors.New("down"))
	r.RecordUpstream("pulse", "kpi", errors.New("down"))
	r.RecordFallback("weather")
	r.RecordActiveAlerts("critical", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstreamTotal.WithLabelValues("pulse", "kpi", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.upstreamTotal.WithLabelValues("pulse", "kpi", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("weather")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.activeAlerts.WithLabelValues("critical")))
}
