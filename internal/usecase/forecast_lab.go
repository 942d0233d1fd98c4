package usecase

import (
	"context"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	svcmetrics "PulseGateway/internal/service/metrics"
	xlogger "PulseGateway/pkg/logger"
)

// ForecastLabUseCase serves the detailed forecast with metrics and feature importance.
type ForecastLabUseCase struct {
	api     domrepo.PulseAPI
	seq     *Sequencer
	metrics domrepo.Metrics
	logger  *xlogger.Logger
	timeout time.Duration
}

func NewForecastLabUseCase(api domrepo.PulseAPI, seq *Sequencer, metrics domrepo.Metrics, logger *xlogger.Logger) *ForecastLabUseCase {
	return &ForecastLabUseCase{api: api, seq: seq, metrics: metrics, logger: logger.With("forecast_lab"), timeout: 20 * time.Second}
}

// Get returns an empty forecast with a warning when the backend fails.
func (uc *ForecastLabUseCase) Get(ctx context.Context, clientKey string, req models.ForecastRequest) (*models.ForecastLabView, error) {
	start := time.Now()
	defer func() { svcmetrics.ViewLatency.WithLabelValues("forecast_lab").Observe(time.Since(start).Seconds()) }()

	ctx, ticket := uc.seq.Begin(ctx, "forecast_lab:"+clientKey)
	defer ticket.Done()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	f, err := uc.api.Forecast(ctx, req.Params())
	if !ticket.Current() {
		svcmetrics.ViewSuperseded.WithLabelValues("forecast_lab").Inc()
		return nil, ErrSuperseded
	}

	warn := newWarnings("forecast_lab")
	view := &models.ForecastLabView{}
	if err != nil {
		uc.logger.Warn("forecast fetch failed", xlogger.Error(err))
		uc.metrics.RecordFallback("forecast")
		warn.add("forecast", "Forecast service unavailable.")
		view.Forecast = models.Forecast{Points: []models.ForecastPoint{}}
	} else {
		view.Forecast = *f
		if view.Points == nil {
			view.Points = []models.ForecastPoint{}
		}
	}
	view.Warnings = warn.list
	view.DataSource = warn.dataSource()
	return view, nil
}

// Points fetches forecast points for export; an upstream failure is returned as is.
func (uc *ForecastLabUseCase) Points(ctx context.Context, req models.ForecastRequest) ([]models.ForecastPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	f, err := uc.api.Forecast(ctx, req.Params())
	if err != nil {
		return nil, err
	}
	return f.Points, nil
}
