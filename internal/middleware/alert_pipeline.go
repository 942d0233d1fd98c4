package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
)

// Proc is the downstream the pipeline feeds.
type Proc interface {
	Process(ctx context.Context, ev *models.AlertEvent) error
}

// AlertPipeline sits between the alert board and the sinks.
// It validates, throttles per alert and buffers events while the sink is down.
type AlertPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.AlertEvent
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per alert id and event type
}

type PipelineOption func(*AlertPipeline)

// WithMaxRPS caps accepted events per second for one alert.
func WithMaxRPS(n int) PipelineOption {
	return func(p *AlertPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets how many events are held while the sink is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *AlertPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func NewAlertPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *AlertPipeline {
	p := &AlertPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   50,
		bufSize:  500,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.AlertEvent, p.bufSize)
	return p
}

// Start drains the buffer in the background, backing off while the sink keeps failing.
func (p *AlertPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case ev := <-p.bufCh:
				if err := p.proc.Process(ctx, ev); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("alert_pipeline_flush")
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						return
					}
					select {
					case p.bufCh <- ev:
					default:
						p.metrics.RecordError("alert_pipeline_drop")
					}
					continue
				}
				backoff = 50 * time.Millisecond
			}
		}
	}()
}

func (p *AlertPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Buffered reports events waiting for redelivery.
func (p *AlertPipeline) Buffered() int { return len(p.bufCh) }

// Process forwards one event, buffering it when the sink fails.
// Throttled events are dropped without error.
func (p *AlertPipeline) Process(ctx context.Context, ev *models.AlertEvent) error {
	start := time.Now()
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("alert_pipeline_validate")
		return err
	}
	if !p.allow(string(ev.Type)+":"+ev.Alert.ID, start) {
		p.metrics.RecordError("alert_pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, ev); err != nil {
		p.metrics.RecordError("alert_pipeline_process")
		select {
		case p.bufCh <- ev:
		default:
			p.metrics.RecordError("alert_pipeline_buffer_full")
		}
		return fmt.Errorf("alert pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("alert_pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEvent(ev *models.AlertEvent) error {
	if ev == nil {
		return fmt.Errorf("alert event nil")
	}
	if ev.Alert.ID == "" {
		return fmt.Errorf("alert id empty")
	}
	switch ev.Type {
	case models.AlertEventCreated, models.AlertEventAcknowledged:
	default:
		return fmt.Errorf("unknown alert event type %q", ev.Type)
	}
	if ev.At.IsZero() {
		return fmt.Errorf("alert event time missing")
	}
	return nil
}

func (p *AlertPipeline) allow(key string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastSeen[key]
	if ok && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[key] = now
	return true
}
