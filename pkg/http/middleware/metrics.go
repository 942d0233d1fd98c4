package middleware

import (
	"strconv"
	"sync"
	"time"

	applogger "PulseGateway/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Labels use Echo's route template so cardinality stays bounded.
var (
	requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_http_requests_total",
		Help: "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulse_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "class"})

	inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_http_in_flight_requests",
		Help: "Requests currently being served",
	})

	registerOnce sync.Once
)

// Metrics records Prometheus series per request and logs failed or slow ones.
// A zero slow threshold disables slow logging.
func Metrics(l *applogger.Logger, slow time.Duration) echo.MiddlewareFunc {
	registerOnce.Do(func() { prometheus.MustRegister(requests, latency, inFlight) })

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			inFlight.Inc()
			defer inFlight.Dec()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			route, method, code := c.Path(), c.Request().Method, c.Response().Status
			if route == "" {
				route = "unmatched"
			}
			took := time.Since(start)
			requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
			latency.WithLabelValues(route, method, strconv.Itoa(code/100)+"xx").Observe(took.Seconds())

			switch {
			case l == nil:
			case code >= 500:
				l.Error("http request failed", applogger.String("route", route), applogger.Int("status", code), applogger.Duration("took_ms", took))
			case slow > 0 && took >= slow:
				l.Warn("http request slow", applogger.String("route", route), applogger.Int("status", code), applogger.Duration("took_ms", took))
			}
			return nil
		}
	}
}
