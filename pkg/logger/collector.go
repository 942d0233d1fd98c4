package logger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Publisher ships a batch of aggregated entries. The Kafka producer satisfies it.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectorConfig struct {
	Interval   time.Duration
	MaxEntries int // distinct entries held before an early flush
	Topic      string
	Publisher  Publisher
}

// Entry counts repeats of one error log line.
type Entry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Collector folds identical error logs together and publishes them periodically.
type Collector struct {
	cfg     CollectorConfig
	mu      sync.Mutex
	entries map[string]*Entry
	sends   sync.WaitGroup
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewCollector(cfg CollectorConfig) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	c := &Collector{
		cfg:     cfg,
		entries: make(map[string]*Entry),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.loop()
	return c
}

func (c *Collector) Add(level, msg string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := fingerprint(level, msg, fields, caller)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.entries[key] = &Entry{Level: level, Message: msg, Fields: fields, Caller: caller, Count: 1, FirstSeen: now, LastSeen: now}
	}
	if c.cfg.MaxEntries > 0 && len(c.entries) >= c.cfg.MaxEntries {
		c.flushLocked()
	}
}

// Close stops the ticker, flushes what is left and waits for in-flight sends.
func (c *Collector) Close() {
	c.once.Do(func() {
		close(c.done)
		<-c.stopped
		c.sends.Wait()
	})
}

func (c *Collector) loop() {
	defer close(c.stopped)
	t := time.NewTicker(c.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
		case <-c.done:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
			return
		}
	}
}

func (c *Collector) flushLocked() {
	if len(c.entries) == 0 {
		return
	}
	batch := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		batch = append(batch, *e)
	}
	c.entries = make(map[string]*Entry)
	if c.cfg.Publisher == nil {
		return
	}

	c.sends.Add(1)
	go func() {
		defer c.sends.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
			// the logger itself is the failing sink here
			_, _ = os.Stderr.WriteString("log collector publish failed: " + err.Error() + "\n")
		}
	}()
}

func fingerprint(level, msg string, fields map[string]interface{}, caller string) string {
	b, _ := json.Marshal([]interface{}{level, msg, fields, caller})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
