package usecase

import (
	"context"
	"strings"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	svcmetrics "PulseGateway/internal/service/metrics"
	"PulseGateway/pkg/cache"
	xlogger "PulseGateway/pkg/logger"
)

const defaultScenarioHorizon = 7

// ScenarioUseCase serves the scenario sandbox from a cached scenario comparison.
type ScenarioUseCase struct {
	api     domrepo.PulseAPI
	cache   cache.Service
	ttl     time.Duration
	seq     *Sequencer
	metrics domrepo.Metrics
	logger  *xlogger.Logger
	timeout time.Duration
}

func NewScenarioUseCase(api domrepo.PulseAPI, c cache.Service, ttl time.Duration, seq *Sequencer, metrics domrepo.Metrics, logger *xlogger.Logger) *ScenarioUseCase {
	return &ScenarioUseCase{
		api:     api,
		cache:   c,
		ttl:     ttl,
		seq:     seq,
		metrics: metrics,
		logger:  logger.With("scenarios"),
		timeout: 20 * time.Second,
	}
}

// ScenarioCacheKey is the cache key of one horizon's comparison.
func ScenarioCacheKey(horizonDays int) string {
	return cache.Key("scenarios", horizonDays)
}

// ParseSelection reads a comma-separated scenario list; empty means the default selection.
// Unknown names are ignored.
func ParseSelection(raw string) []models.ScenarioKey {
	if strings.TrimSpace(raw) == "" {
		return append([]models.ScenarioKey(nil), models.DefaultScenarioSelection...)
	}
	seen := map[models.ScenarioKey]bool{}
	out := []models.ScenarioKey{}
	for _, part := range strings.Split(raw, ",") {
		k, ok := models.ParseScenarioKey(strings.TrimSpace(part))
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// Load returns the scenario comparison for a horizon, from cache when fresh.
func (uc *ScenarioUseCase) Load(ctx context.Context, horizonDays int) (*models.ScenarioSet, bool, error) {
	set, hit, err := cache.Remember(ctx, uc.cache, ScenarioCacheKey(horizonDays), uc.ttl,
		func(ctx context.Context) (*models.ScenarioSet, error) {
			return uc.api.Scenarios(ctx, horizonDays)
		})
	return set, hit, err
}

// Warm replaces the cached comparison for a horizon. The old entry survives a failed fetch.
func (uc *ScenarioUseCase) Warm(ctx context.Context, horizonDays int) error {
	set, err := uc.api.Scenarios(ctx, horizonDays)
	if err != nil {
		uc.metrics.RecordFallback("scenarios")
		return err
	}
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Set(ctx, ScenarioCacheKey(horizonDays), set, uc.ttl)
}

// Get aligns the selected scenarios into chart rows.
func (uc *ScenarioUseCase) Get(ctx context.Context, clientKey string, req models.ScenarioRequest) (*models.ScenarioView, error) {
	start := time.Now()
	defer func() { svcmetrics.ViewLatency.WithLabelValues("scenarios").Observe(time.Since(start).Seconds()) }()

	ctx, ticket := uc.seq.Begin(ctx, "scenarios:"+clientKey)
	defer ticket.Done()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	selected := ParseSelection(req.Scenarios)
	set, _, err := uc.Load(ctx, req.HorizonDays)
	if !ticket.Current() {
		svcmetrics.ViewSuperseded.WithLabelValues("scenarios").Inc()
		return nil, ErrSuperseded
	}

	warn := newWarnings("scenarios")
	if err != nil {
		uc.logger.Warn("scenario fetch failed", xlogger.Int("horizon_days", req.HorizonDays), xlogger.Error(err))
		uc.metrics.RecordFallback("scenarios")
		warn.add("scenarios", "Scenario data unavailable.")
		set = &models.ScenarioSet{HorizonDays: req.HorizonDays}
	}

	rows := AlignScenarios(set, selected)
	view := &models.ScenarioView{
		HorizonDays: req.HorizonDays,
		Selected:    selected,
		Rows:        rows,
		Empty:       len(rows) == 0,
		Warnings:    warn.list,
		DataSource:  warn.dataSource(),
	}
	if !view.Empty {
		view.Stats = ScenarioStatsFromSeries(set)
		view.CostImpact = ScenarioCostImpact(view.Stats)
	}
	return view, nil
}
