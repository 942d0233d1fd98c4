package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	xlogger "PulseGateway/pkg/logger"
)

// AlertEventSink receives every board change. middleware.AlertPipeline satisfies it.
type AlertEventSink interface {
	Process(ctx context.Context, ev *models.AlertEvent) error
}

// AlertBoard is the in-memory set of alerts for this gateway. Alerts are only
// ever appended or acknowledged; existing entries are never replaced.
type AlertBoard struct {
	mu     sync.RWMutex
	alerts []models.Alert
	index  map[string]int

	subMu   sync.Mutex
	subs    map[int]chan models.AlertEvent
	nextSub int

	sink    AlertEventSink
	metrics domrepo.Metrics
	logger  *xlogger.Logger
	now     func() time.Time
}

func NewAlertBoard(sink AlertEventSink, metrics domrepo.Metrics, logger *xlogger.Logger) *AlertBoard {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &AlertBoard{
		index:   make(map[string]int),
		subs:    make(map[int]chan models.AlertEvent),
		sink:    sink,
		metrics: metrics,
		logger:  logger.With("alert_board"),
		now:     time.Now,
	}
}

// Merge appends alerts whose id is not on the board yet and returns those added.
func (b *AlertBoard) Merge(ctx context.Context, incoming []models.Alert) []models.Alert {
	b.mu.Lock()
	var added []models.Alert
	for _, a := range incoming {
		if a.ID == "" {
			continue
		}
		if _, ok := b.index[a.ID]; ok {
			continue
		}
		a.Acknowledged = false
		b.index[a.ID] = len(b.alerts)
		b.alerts = append(b.alerts, a)
		added = append(added, a)
	}
	b.mu.Unlock()

	for _, a := range added {
		b.emit(ctx, models.AlertEventCreated, a)
	}
	if len(added) > 0 {
		b.recordCounts()
	}
	return added
}

// Acknowledge marks id as acknowledged. It reports whether id is on the board;
// repeating it is harmless and emits nothing.
func (b *AlertBoard) Acknowledge(ctx context.Context, id string) (models.Alert, bool) {
	b.mu.Lock()
	i, ok := b.index[id]
	if !ok {
		b.mu.Unlock()
		return models.Alert{}, false
	}
	changed := !b.alerts[i].Acknowledged
	b.alerts[i].Acknowledged = true
	a := b.alerts[i]
	b.mu.Unlock()

	if changed {
		b.emit(ctx, models.AlertEventAcknowledged, a)
		b.recordCounts()
	}
	return a, true
}

// Partition splits the board: active sorted by severity (stable), acknowledged in insertion order.
func (b *AlertBoard) Partition() models.AlertPartition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return partition(b.alerts)
}

func partition(alerts []models.Alert) models.AlertPartition {
	p := models.AlertPartition{
		Active:       []models.Alert{},
		Acknowledged: []models.Alert{},
	}
	for _, a := range alerts {
		if a.Acknowledged {
			p.Acknowledged = append(p.Acknowledged, a)
			continue
		}
		p.Active = append(p.Active, a)
		switch a.Severity {
		case models.SeverityCritical:
			p.Counts.Critical++
		case models.SeverityHigh:
			p.Counts.High++
		case models.SeverityMedium:
			p.Counts.Medium++
		}
	}
	sort.SliceStable(p.Active, func(i, j int) bool {
		return p.Active[i].Severity.Rank() < p.Active[j].Severity.Rank()
	})
	return p
}

func (b *AlertBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.alerts)
}

// Subscribe returns a stream of board events. Slow subscribers miss events rather than block the board.
func (b *AlertBoard) Subscribe(buffer int) (<-chan models.AlertEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan models.AlertEvent, buffer)
	b.subMu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	b.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.subMu.Lock()
			delete(b.subs, id)
			b.subMu.Unlock()
			close(ch)
		})
	}
}

func (b *AlertBoard) emit(ctx context.Context, typ models.AlertEventType, a models.Alert) {
	ev := models.AlertEvent{Type: typ, Alert: a, At: b.now()}

	b.subMu.Lock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.metrics.RecordError("alert_subscriber_drop")
		}
	}
	b.subMu.Unlock()

	if b.sink == nil {
		return
	}
	if err := b.sink.Process(ctx, &ev); err != nil {
		b.logger.Warn("alert event not delivered",
			xlogger.String("alert_id", a.ID),
			xlogger.String("event", string(typ)),
			xlogger.Error(err))
	}
}

func (b *AlertBoard) recordCounts() {
	c := b.Partition().Counts
	b.metrics.RecordActiveAlerts(string(models.SeverityCritical), c.Critical)
	b.metrics.RecordActiveAlerts(string(models.SeverityHigh), c.High)
	b.metrics.RecordActiveAlerts(string(models.SeverityMedium), c.Medium)
}
