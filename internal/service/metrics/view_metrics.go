package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ViewLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pulse",
			Subsystem: "view",
			Name:      "latency_seconds",
			Help:      "Latency of dashboard view assembly",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	ViewWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "view",
			Name:      "warnings_total",
			Help:      "Degraded sub-fetches by view and source",
		},
		[]string{"view", "source"},
	)

	ViewSuperseded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulse",
			Subsystem: "view",
			Name:      "superseded_total",
			Help:      "Responses discarded because a newer request for the same key started",
		},
		[]string{"view"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ViewLatency, ViewWarnings, ViewSuperseded)
	})
}
