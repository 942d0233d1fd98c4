package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "PulseGateway/internal/middleware"
	"PulseGateway/internal/service/ratelimit"
	"PulseGateway/internal/usecase"
	"PulseGateway/pkg/cache"
	pkgch "PulseGateway/pkg/clickhouse"
	"PulseGateway/pkg/config"
	xhttp "PulseGateway/pkg/http"
	pkgkafka "PulseGateway/pkg/kafka"
	applogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/queue"
	"PulseGateway/pkg/scheduler"

	"github.com/labstack/echo/v4"
)

const limiterIdle = 30 * time.Minute

// Components are the background parts of the app. Infrastructure fields are nil when disabled.
type Components struct {
	Scheduler  *scheduler.Scheduler
	PollJobs   []usecase.PollJob
	Pipeline   *mid.AlertPipeline
	Processor  *usecase.AlertEventProcessor
	Consumer   *pkgkafka.Consumer
	Handlers   []pkgkafka.MessageHandler
	Producer   *pkgkafka.Producer
	Outbox     *queue.RedisConsumer
	ClickHouse *pkgch.Client
	Redis      *cache.RedisCache
	Limiter    *ratelimit.Limiter
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	router     xhttp.Handler
	c          Components
	httpServer *xhttp.Server
}

func New(cfg *config.Config, l *applogger.Logger, router xhttp.Handler, c Components) *App {
	return &App{cfg: cfg, log: l.With("app"), router: router, c: c}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.Shutdown(ctx)
}

// Start launches the HTTP server and every background component.
func (a *App) Start(ctx context.Context) error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.router,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithProbe("/readyz", a.ready),
		xhttp.WithLogger(a.log.With("http")),
	)

	if a.c.Pipeline != nil {
		a.c.Pipeline.Start(ctx)
		a.log.Info("alert pipeline started", applogger.String("sink", a.cfg.Alerts.Sink))
	}

	if a.c.Consumer != nil {
		for _, h := range a.c.Handlers {
			a.c.Consumer.RegisterHandler(h)
			a.log.Info("kafka handler registered", applogger.String("topic", h.Topic()))
		}
		if err := a.c.Consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
		}
	}

	if a.c.Outbox != nil {
		if err := a.c.Outbox.Start(); err != nil {
			a.log.Error("outbox consumer start error", applogger.Error(err))
		}
	}

	if a.c.Scheduler != nil {
		for _, pj := range a.c.PollJobs {
			if err := a.c.Scheduler.AddJob(pj.Schedule, pj.Job); err != nil {
				a.log.Error("poll job rejected",
					applogger.String("job", pj.Job.Name()),
					applogger.String("schedule", pj.Schedule),
					applogger.Error(err))
			}
		}
		if a.c.Limiter != nil {
			sweep := scheduler.JobFunc{JobName: "ratelimit_sweep", Fn: func() error {
				if n := a.c.Limiter.Sweep(limiterIdle); n > 0 {
					a.log.Debug("rate limit buckets swept", applogger.Int("count", n))
				}
				return nil
			}}
			if err := a.c.Scheduler.AddJob("@every 10m", sweep); err != nil {
				a.log.Warn("sweep job rejected", applogger.Error(err))
			}
		}
		a.c.Scheduler.Start()
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	return nil
}

// ready reports whether the enabled backends answer.
func (a *App) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	ok := true
	if a.c.ClickHouse != nil {
		status["clickhouse"] = "ok"
		if err := a.c.ClickHouse.Health(ctx); err != nil {
			status["clickhouse"] = err.Error()
			ok = false
		}
	}
	if a.c.Redis != nil {
		status["redis"] = "ok"
		if err := a.c.Redis.Ping(ctx); err != nil {
			status["redis"] = err.Error()
			ok = false
		}
	}
	if a.c.Pipeline != nil {
		status["alert_buffer"] = "idle"
		if a.c.Pipeline.Buffered() > 0 {
			status["alert_buffer"] = "draining"
		}
	}
	code := http.StatusOK
	if !ok {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

// Shutdown stops components in reverse dependency order.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.c.Scheduler != nil {
		a.c.Scheduler.Stop()
	}
	if a.c.Consumer != nil {
		if err := a.c.Consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.c.Outbox != nil {
		if err := a.c.Outbox.Stop(shutdownCtx); err != nil {
			a.log.Warn("outbox stop error", applogger.Error(err))
		}
	}
	if a.c.Pipeline != nil {
		a.c.Pipeline.Stop()
		if n := a.c.Pipeline.Buffered(); n > 0 {
			a.log.Warn("alert events dropped at shutdown", applogger.Int("count", n))
		}
	}
	if a.c.Processor != nil {
		a.c.Processor.Close()
	}
	if a.c.Producer != nil {
		if err := a.c.Producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.c.ClickHouse != nil {
		if err := a.c.ClickHouse.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.c.Redis != nil {
		if err := a.c.Redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	a.log.RemoveCollector()
	return nil
}
