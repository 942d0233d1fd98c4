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

const (
	warnKPI       = "Live KPIs unavailable. Showing last known values."
	warnInventory = "Inventory data unavailable."
	warnDecision  = "Decision engine unavailable."
)

// AlertsUseCase refreshes the alert board from KPI, inventory and decision sources.
type AlertsUseCase struct {
	api     domrepo.PulseAPI
	synth   *AlertSynthesizer
	board   *AlertBoard
	seq     *Sequencer
	metrics domrepo.Metrics
	logger  *xlogger.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewAlertsUseCase(
	api domrepo.PulseAPI,
	synth *AlertSynthesizer,
	board *AlertBoard,
	seq *Sequencer,
	metrics domrepo.Metrics,
	logger *xlogger.Logger,
) *AlertsUseCase {
	return &AlertsUseCase{
		api:     api,
		synth:   synth,
		board:   board,
		seq:     seq,
		metrics: metrics,
		logger:  logger.With("alerts"),
		timeout: 15 * time.Second,
		now:     time.Now,
	}
}

// Refresh fetches the three sources, merges synthesised alerts into the board and
// returns the partitioned board. A superseded refresh writes nothing.
func (uc *AlertsUseCase) Refresh(ctx context.Context, key string) (*models.AlertsView, error) {
	start := uc.now()
	defer func() { svcmetrics.ViewLatency.WithLabelValues("alerts").Observe(time.Since(start).Seconds()) }()

	ctx, ticket := uc.seq.Begin(ctx, "alerts:"+key)
	defer ticket.Done()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

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
		v, err := uc.api.KPI(ctx)
		ch <- item{"kpi", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.api.Inventory(ctx)
		ch <- item{"inventory", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.api.EvaluateDecision(ctx, nil)
		ch <- item{"decision", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	got := map[string]interface{}{}
	for it := range ch {
		if it.err != nil {
			uc.logger.Warn("alerts source failed", xlogger.String("source", it.name), xlogger.Error(it.err))
			continue
		}
		got[it.name] = it.val
	}

	if !ticket.Current() {
		svcmetrics.ViewSuperseded.WithLabelValues("alerts").Inc()
		return nil, ErrSuperseded
	}

	warn := newWarnings("alerts")
	kpi := models.DefaultKPI()
	if k, ok := got["kpi"].(*models.KPI); ok && k != nil {
		kpi = *k
	} else {
		uc.metrics.RecordFallback("kpi")
		warn.add("kpi", warnKPI)
	}

	inventory, ok := got["inventory"].([]models.InventoryItem)
	if !ok {
		warn.add("inventory", warnInventory)
	}

	var incoming []models.Alert
	if d, ok := got["decision"].(*models.Decision); ok && d != nil {
		incoming = append(incoming, uc.synth.FromDecision(d, start)...)
	} else {
		warn.add("decision", warnDecision)
	}
	incoming = append(incoming, uc.synth.FromKPI(kpi, start)...)
	incoming = append(incoming, uc.synth.FromInventory(inventory, start)...)

	if added := uc.board.Merge(ctx, incoming); len(added) > 0 {
		uc.logger.Info("alerts added", xlogger.Int("count", len(added)))
	}

	return &models.AlertsView{
		AlertPartition: uc.board.Partition(),
		KPI:            kpi,
		Headline:       warn.headline(),
		Warnings:       warn.list,
		DataSource:     warn.dataSource(),
	}, nil
}

// Acknowledge marks one alert; unknown ids leave the board untouched.
func (uc *AlertsUseCase) Acknowledge(ctx context.Context, id string) (models.AlertPartition, bool) {
	_, found := uc.board.Acknowledge(ctx, id)
	return uc.board.Partition(), found
}

// Board returns the current partition without refreshing.
func (uc *AlertsUseCase) Board() models.AlertPartition {
	return uc.board.Partition()
}
