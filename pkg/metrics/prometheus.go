package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the Prometheus-backed gateway metrics sink.
type Recorder struct {
	upstreamTotal *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	activeAlerts  *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New registers on the default registry. Call it once per process.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder's collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		upstreamTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_upstream_requests_total",
				Help: "Upstream requests by target endpoint and result",
			},
			[]string{"upstream", "endpoint", "result"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_fallbacks_total",
				Help: "Responses served from fallback data",
			},
			[]string{"source"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_errors_total",
				Help: "Gateway errors by kind",
			},
			[]string{"type"},
		),
		activeAlerts: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pulse_active_alerts",
				Help: "Unacknowledged alerts on the board by severity",
			},
			[]string{"severity"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulse_operation_duration_seconds",
				Help:    "Latency of gateway operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordUpstream records one upstream call outcome.
func (r *Recorder) RecordUpstream(upstream, endpoint string, err error) {
	outcome := map[bool]string{true: "ok", false: "error"}[err == nil]
	r.upstreamTotal.WithLabelValues(upstream, endpoint, outcome).Inc()
}

// RecordFallback records a response served from fallback data.
func (r *Recorder) RecordFallback(source string) {
	r.fallbacks.WithLabelValues(source).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordActiveAlerts sets the active alert gauge for a severity.
func (r *Recorder) RecordActiveAlerts(severity string, n int) {
	r.activeAlerts.WithLabelValues(severity).Set(float64(n))
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
