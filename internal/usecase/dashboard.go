package usecase

import (
	"context"
	"sync"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	svcmetrics "PulseGateway/internal/service/metrics"
	xlogger "PulseGateway/pkg/logger"
)

// DashboardUseCase assembles the operations dashboard from forecast, decision and KPI.
type DashboardUseCase struct {
	api       domrepo.PulseAPI
	synth     *AlertSynthesizer
	approvals *ApprovalsUseCase
	seq       *Sequencer
	metrics   domrepo.Metrics
	logger    *xlogger.Logger
	timeout   time.Duration
	now       func() time.Time
}

func NewDashboardUseCase(
	api domrepo.PulseAPI,
	synth *AlertSynthesizer,
	approvals *ApprovalsUseCase,
	seq *Sequencer,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
) *DashboardUseCase {
	return &DashboardUseCase{
		api:       api,
		synth:     synth,
		approvals: approvals,
		seq:       seq,
		metrics:   metrics,
		logger:    logger.With("dashboard"),
		timeout:   20 * time.Second,
		now:       time.Now,
	}
}

// Get fetches all three sources concurrently; a failing source degrades the view
// with a warning and never blocks the others. clientKey scopes latest-wins.
func (uc *DashboardUseCase) Get(ctx context.Context, clientKey string, req models.DashboardRequest) (*models.DashboardView, error) {
	start := uc.now()
	defer func() { svcmetrics.ViewLatency.WithLabelValues("dashboard").Observe(time.Since(start).Seconds()) }()

	ctx, ticket := uc.seq.Begin(ctx, "dashboard:"+clientKey)
	defer ticket.Done()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	simAQI := req.SimulatedAQI()
	res := &models.DashboardView{
		Forecast:        []models.ForecastPoint{},
		Recommendations: []models.Recommendation{},
		GeneratedAt:     start,
	}
	warn := newWarnings("dashboard")

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.api.Forecast(ctx, models.ForecastParams{HorizonDays: req.HorizonDays, AQIOverride: simAQI, IsFestival: req.IsFestival})
		ch <- item{"forecast", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.api.EvaluateDecision(ctx, simAQI)
		ch <- item{"decision", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.api.KPI(ctx)
		ch <- item{"kpi", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	got := map[string]interface{}{}
	for it := range ch {
		if it.err != nil {
			uc.logger.Warn("dashboard source failed", xlogger.String("source", it.name), xlogger.Error(it.err))
			continue
		}
		got[it.name] = it.val
	}

	if !ticket.Current() {
		svcmetrics.ViewSuperseded.WithLabelValues("dashboard").Inc()
		return nil, ErrSuperseded
	}

	if f, ok := got["forecast"].(*models.Forecast); ok && f != nil {
		res.Forecast = f.Points
		res.Summary = f.Summary
	} else {
		warn.add("forecast", "Forecast unavailable.")
	}

	if d, ok := got["decision"].(*models.Decision); ok && d != nil {
		res.Recommendations = uc.synth.Recommendations(d, start, uc.approvals.IsApproved)
		res.ReasoningTrace = d.ReasoningTrace
		res.RiskExplanation = d.ScoreExplanation
	} else {
		warn.add("decision", "Decision engine unavailable.")
	}

	if k, ok := got["kpi"].(*models.KPI); ok && k != nil {
		res.KPI = *k
	} else {
		res.KPI = models.DefaultKPI()
		if simAQI != nil {
			res.KPI.AQI = *simAQI
		}
		uc.metrics.RecordFallback("kpi")
		warn.add("kpi", "Live KPIs unavailable. Showing last known values.")
	}

	res.Warnings = warn.list
	res.DataSource = warn.dataSource()
	return res, nil
}
