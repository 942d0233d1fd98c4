package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Publisher puts a typed message on the outbox.
type Publisher interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// Job handles every message of one type.
type Job interface {
	Name() string
	Type() string
	Handle(ctx context.Context, payload interface{}) error
}

type Config struct {
	Workers    int
	RetryLimit int           // attempts after the first before a message is dead-lettered
	RetryDelay time.Duration // delay before a failed message becomes visible again
	PollWait   time.Duration // BRPOP block time
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 10 * time.Second
	}
	if c.PollWait <= 0 {
		c.PollWait = time.Second
	}
	return c
}

// Message is the stored form of an outbox entry.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// Keys names the three Redis structures behind one outbox.
type Keys struct {
	Pending string // list, LPUSH in and BRPOP out
	Retry   string // sorted set scored by due time
	Dead    string // list of exhausted messages
}

func KeysFor(prefix string) Keys {
	return Keys{
		Pending: prefix + ":pending",
		Retry:   prefix + ":retry",
		Dead:    prefix + ":dead",
	}
}

// ParsePayload decodes a handler payload into T. Payloads arrive as raw JSON
// from Redis, or as values when a job is invoked in-process.
func ParsePayload[T any](payload interface{}) (*T, error) {
	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	}

	var raw []byte
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("re-encode payload: %w", err)
		}
		raw = b
	default:
		return nil, fmt.Errorf("invalid payload type: %T", payload)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &out, nil
}
