package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"PulseGateway/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const retrySweep = 5 * time.Second

// RedisConsumer drains an outbox with a fixed worker pool. Failed messages go
// to the retry set and, after Config.RetryLimit retries, to the dead list.
type RedisConsumer struct {
	log    *logger.Logger
	cfg    Config
	client *redis.Client
	keys   Keys
	jobs   map[string]Job

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRedisConsumer(l *logger.Logger, cfg Config, client *redis.Client, prefix string, jobs ...Job) *RedisConsumer {
	c := &RedisConsumer{
		log:    l,
		cfg:    cfg.withDefaults(),
		client: client,
		keys:   KeysFor(prefix),
		jobs:   make(map[string]Job, len(jobs)),
	}
	for _, j := range jobs {
		if _, dup := c.jobs[j.Type()]; dup {
			l.Warn("duplicate job type ignored", logger.String("job", j.Name()), logger.String("type", j.Type()))
			continue
		}
		c.jobs[j.Type()] = j
	}
	return c
}

func (c *RedisConsumer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("outbox consumer already running")
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := c.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true
	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.work(ctx)
	}
	c.wg.Add(1)
	go c.sweepRetries(ctx)

	c.log.Info("outbox consumer started",
		logger.Int("workers", c.cfg.Workers),
		logger.String("queue", c.keys.Pending))
	return nil
}

// Stop cancels the workers and waits for in-flight jobs until ctx expires.
func (c *RedisConsumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.log.Info("outbox consumer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("outbox consumer stop: %w", ctx.Err())
	}
}

// DeadLetters reports how many messages exhausted their retries.
func (c *RedisConsumer) DeadLetters(ctx context.Context) (int64, error) {
	return c.client.LLen(ctx, c.keys.Dead).Result()
}

func (c *RedisConsumer) work(ctx context.Context) {
	defer c.wg.Done()
	for ctx.Err() == nil {
		res, err := c.client.BRPop(ctx, c.cfg.PollWait, c.keys.Pending).Result()
		switch {
		case err == nil:
		case errors.Is(err, redis.Nil), ctx.Err() != nil:
			continue
		default:
			c.log.Error("outbox pop failed", logger.Error(err))
			sleepCtx(ctx, time.Second)
			continue
		}
		if len(res) == 2 {
			c.dispatch(ctx, []byte(res[1]))
		}
	}
}

func (c *RedisConsumer) dispatch(ctx context.Context, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.log.Error("outbox message undecodable, dead-lettering", logger.Error(err))
		c.bury(raw)
		return
	}
	job, ok := c.jobs[msg.Type]
	if !ok {
		c.log.Error("no job for outbox message", logger.String("type", msg.Type), logger.String("id", msg.ID))
		c.bury(raw)
		return
	}

	err := job.Handle(ctx, msg.Payload)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		// shutting down; hand the message back untouched
		_ = c.client.LPush(context.Background(), c.keys.Pending, raw).Err()
		return
	}

	msg.Attempts++
	msg.LastError = err.Error()
	b, _ := json.Marshal(msg)
	if msg.Attempts > c.cfg.RetryLimit {
		c.log.Error("outbox message dead-lettered",
			logger.String("job", job.Name()),
			logger.String("id", msg.ID),
			logger.Int("attempts", msg.Attempts),
			logger.Error(err))
		c.bury(b)
		return
	}

	due := time.Now().Add(c.cfg.RetryDelay)
	c.log.Warn("outbox job failed, retry scheduled",
		logger.String("job", job.Name()),
		logger.String("id", msg.ID),
		logger.Int("attempt", msg.Attempts),
		logger.String("retry_at", due.Format(time.RFC3339)),
		logger.Error(err))
	if err := c.client.ZAdd(context.Background(), c.keys.Retry, redis.Z{Score: float64(due.Unix()), Member: b}).Err(); err != nil {
		c.log.Error("schedule retry failed", logger.Error(err))
	}
}

func (c *RedisConsumer) bury(raw []byte) {
	if err := c.client.LPush(context.Background(), c.keys.Dead, raw).Err(); err != nil {
		c.log.Error("dead-letter push failed", logger.Error(err))
	}
}

// sweepRetries moves due retries back onto the pending list.
func (c *RedisConsumer) sweepRetries(ctx context.Context) {
	defer c.wg.Done()
	t := time.NewTicker(retrySweep)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		due, err := c.client.ZRangeByScore(ctx, c.keys.Retry, &redis.ZRangeBy{
			Min: "-inf",
			Max: strconv.FormatInt(time.Now().Unix(), 10),
		}).Result()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Error("read retry set failed", logger.Error(err))
			}
			continue
		}
		for _, m := range due {
			pipe := c.client.TxPipeline()
			pipe.ZRem(ctx, c.keys.Retry, m)
			pipe.LPush(ctx, c.keys.Pending, m)
			if _, err := pipe.Exec(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.log.Error("requeue retry failed", logger.Error(err))
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
