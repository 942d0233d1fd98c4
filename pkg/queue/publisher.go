package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher writes outbox messages. It needs no running workers.
type RedisPublisher struct {
	client redis.Cmdable
	keys   Keys
	now    func() time.Time
}

func NewRedisPublisher(client redis.Cmdable, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, keys: KeysFor(prefix), now: time.Now}
}

// Encode builds the stored form of a new message.
func Encode(msgType string, payload interface{}, at time.Time) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return json.Marshal(Message{
		ID:         uuid.NewString(),
		Type:       msgType,
		Payload:    body,
		EnqueuedAt: at.UTC(),
	})
}

func (p *RedisPublisher) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	b, err := Encode(msgType, payload, p.now())
	if err != nil {
		return err
	}
	if err := p.client.LPush(ctx, p.keys.Pending, b).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", msgType, err)
	}
	return nil
}

var _ Publisher = (*RedisPublisher)(nil)
