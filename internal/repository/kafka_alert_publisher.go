package repository

import (
	"context"

	"PulseGateway/internal/domain/models"
	domrepo "PulseGateway/internal/domain/repository"
	pkgkafka "PulseGateway/pkg/kafka"
)

// KafkaAlertPublisher writes board events keyed by alert id so one alert stays on one partition.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) domrepo.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, ev *models.AlertEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Alert.ID), ev)
}

func (p *KafkaAlertPublisher) PublishBatch(ctx context.Context, evs []*models.AlertEvent) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(evs))
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(ev.Alert.ID), Value: ev})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

// Close is a no-op; the producer is shared with the log collector and closed by the app.
func (p *KafkaAlertPublisher) Close() error {
	return nil
}
