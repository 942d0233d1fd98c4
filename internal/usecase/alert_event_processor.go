package usecase

import (
	"context"
	"fmt"
	"time"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
)

// Alert sinks selectable by configuration.
const (
	SinkNone       = "none"
	SinkKafka      = "kafka"
	SinkClickHouse = "clickhouse"
	SinkBoth       = "both"
)

// AlertEventProcessor routes board events to the configured sink.
type AlertEventProcessor struct {
	pub     domrepo.AlertPublisher
	store   domrepo.AlertStore
	metrics domrepo.Metrics
	sink    string
}

func NewAlertEventProcessor(pub domrepo.AlertPublisher, store domrepo.AlertStore, metrics domrepo.Metrics, sink string) *AlertEventProcessor {
	return &AlertEventProcessor{pub: pub, store: store, metrics: metrics, sink: sink}
}

func (p *AlertEventProcessor) Sink() string { return p.sink }

// Process delivers one event. With "both" each backend is tried and the first error wins.
func (p *AlertEventProcessor) Process(ctx context.Context, ev *models.AlertEvent) error {
	if ev == nil {
		return fmt.Errorf("alert event is nil")
	}
	start := time.Now()
	var err error

	switch p.sink {
	case SinkNone:
		return nil
	case SinkKafka:
		err = p.publish(ctx, ev)
	case SinkClickHouse:
		err = p.persist(ctx, ev)
	case SinkBoth:
		errPub := p.publish(ctx, ev)
		errStore := p.persist(ctx, ev)
		if errPub != nil {
			err = errPub
		} else {
			err = errStore
		}
	default:
		err = fmt.Errorf("unknown alert sink: %s", p.sink)
	}

	if err != nil {
		p.metrics.RecordError("alert_process")
		return fmt.Errorf("process alert event %s: %w", ev.Alert.ID, err)
	}
	p.metrics.RecordLatency("alert_process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch delivers events in one call per backend.
func (p *AlertEventProcessor) ProcessBatch(ctx context.Context, evs []*models.AlertEvent) error {
	if len(evs) == 0 || p.sink == SinkNone {
		return nil
	}
	start := time.Now()
	var err error

	switch p.sink {
	case SinkKafka:
		err = p.pub.PublishBatch(ctx, evs)
	case SinkClickHouse:
		err = p.store.StoreBatch(ctx, evs)
	case SinkBoth:
		if err = p.pub.PublishBatch(ctx, evs); err == nil {
			err = p.store.StoreBatch(ctx, evs)
		}
	default:
		err = fmt.Errorf("unknown alert sink: %s", p.sink)
	}

	if err != nil {
		p.metrics.RecordError("alert_process_batch")
		return fmt.Errorf("process alert batch: %w", err)
	}
	p.metrics.RecordLatency("alert_process_batch", time.Since(start).Seconds())
	return nil
}

func (p *AlertEventProcessor) publish(ctx context.Context, ev *models.AlertEvent) error {
	if p.pub == nil {
		return fmt.Errorf("kafka publisher not configured")
	}
	return p.pub.Publish(ctx, ev)
}

func (p *AlertEventProcessor) persist(ctx context.Context, ev *models.AlertEvent) error {
	if p.store == nil {
		return fmt.Errorf("alert store not configured")
	}
	return p.store.Store(ctx, ev)
}

// Close releases the sink backends.
func (p *AlertEventProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
