package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	applogger "PulseGateway/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// MessageHandler consumes one topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

type ConsumerConfig struct {
	Brokers       []string
	GroupID       string
	StartAtLatest bool
	Workers       int
	BufferSize    int
	RetryMax      int
	BackoffMin    time.Duration
	BackoffMax    time.Duration
	DLQTopic      string // failed records are copied here when set
	Logger        *applogger.Logger

	// OnFailure is called once per record that exhausted its retries.
	OnFailure func(topic string, err error)
}

func (c *ConsumerConfig) setDefaults() {
	if c.GroupID == "" {
		c.GroupID = "pulse-gateway"
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 16
	}
	if c.BackoffMin <= 0 {
		c.BackoffMin = 50 * time.Millisecond
	}
	if c.BackoffMax < c.BackoffMin {
		c.BackoffMax = c.BackoffMin
	}
	if c.Logger == nil {
		c.Logger = applogger.NewNop()
	}
}

// Consumer fans records from one reader per topic into a worker pool.
// Records of one partition are handled in order.
type Consumer struct {
	cfg      ConsumerConfig
	log      *applogger.Logger
	handlers map[string]MessageHandler
	readers  map[string]*kafka.Reader
	dlq      *kafka.Writer
	records  chan record

	stop     chan struct{}
	stopOnce sync.Once
	readWg   sync.WaitGroup
	workWg   sync.WaitGroup

	partMu sync.Mutex
	parts  map[string]*sync.Mutex
}

type record struct {
	topic string
	msg   kafka.Message
}

func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: brokers are required")
	}
	cfg.setDefaults()
	consumerMetricsOnce.Do(registerConsumerMetrics)

	c := &Consumer{
		cfg:      cfg,
		log:      cfg.Logger,
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]*kafka.Reader),
		records:  make(chan record, cfg.BufferSize),
		stop:     make(chan struct{}),
		parts:    make(map[string]*sync.Mutex),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Topic: cfg.DLQTopic, Balancer: &kafka.Hash{}}
	}
	return c, nil
}

// RegisterHandler must be called before Start.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, dup := c.handlers[h.Topic()]; dup {
		c.log.Warn("handler already registered", applogger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("kafka consumer: no handlers registered")
	}
	offset := kafka.FirstOffset
	if c.cfg.StartAtLatest {
		offset = kafka.LastOffset
	}

	for i := 0; i < c.cfg.Workers; i++ {
		c.workWg.Add(1)
		go c.work()
	}
	for topic := range c.handlers {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers:     c.cfg.Brokers,
			GroupID:     c.cfg.GroupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: offset,
		})
		c.readers[topic] = r
		c.readWg.Add(1)
		go c.read(topic, r)
	}

	c.log.Info("kafka consumer started",
		applogger.String("group", c.cfg.GroupID),
		applogger.Int("topics", len(c.readers)),
		applogger.Int("workers", c.cfg.Workers))
	return nil
}

// Stop halts the readers, drains queued records, then closes connections.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		if err = wait(ctx, &c.readWg); err == nil {
			close(c.records)
			err = wait(ctx, &c.workWg)
		}
		for topic, r := range c.readers {
			if cerr := r.Close(); cerr != nil {
				c.log.Warn("reader close failed", applogger.String("topic", topic), applogger.Error(cerr))
			}
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
	})
	return err
}

func (c *Consumer) read(topic string, r *kafka.Reader) {
	defer c.readWg.Done()
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		msg, err := r.FetchMessage(ctx)
		cancel()
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				c.log.Warn("fetch failed", applogger.String("topic", topic), applogger.Error(err))
			}
			continue
		}

		select {
		case c.records <- record{topic: topic, msg: msg}:
			consumerBacklog.WithLabelValues(topic).Set(float64(len(c.records)))
		case <-c.stop:
			return
		}
	}
}

func (c *Consumer) work() {
	defer c.workWg.Done()
	for rec := range c.records {
		c.process(rec)
	}
}

func (c *Consumer) process(rec record) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			c.log.Error("panic in kafka handler", applogger.String("topic", rec.topic), applogger.Any("panic", p))
		}
	}()

	lock := c.partition(rec.topic, rec.msg.Partition)
	lock.Lock()
	defer lock.Unlock()

	attempts, err := c.handleWithRetry(rec)
	consumerLatency.WithLabelValues(rec.topic).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, errStopping) {
			return
		}
		c.log.Error("kafka record failed",
			applogger.String("topic", rec.topic),
			applogger.Int("attempts", attempts),
			applogger.Error(err))
		if c.cfg.OnFailure != nil {
			c.cfg.OnFailure(rec.topic, err)
		}
		if !c.deadLetter(rec, err) {
			// without a DLQ the offset stays uncommitted and the record is redelivered after a rebalance
			return
		}
	}
	c.commit(rec)
}

var errStopping = errors.New("consumer stopping")

func (c *Consumer) handleWithRetry(rec record) (int, error) {
	h := c.handlers[rec.topic]
	if h == nil {
		return 0, fmt.Errorf("no handler for topic %s", rec.topic)
	}
	for attempt := 1; ; attempt++ {
		err := h.Handle(context.Background(), rec.msg.Value)
		if err == nil || attempt > c.cfg.RetryMax {
			return attempt, err
		}
		select {
		case <-time.After(backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)):
		case <-c.stop:
			return attempt, errStopping
		}
	}
}

func (c *Consumer) deadLetter(rec record, cause error) bool {
	if c.dlq == nil {
		return false
	}
	err := c.dlq.WriteMessages(context.Background(), kafka.Message{
		Key:   rec.msg.Key,
		Value: rec.msg.Value,
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(rec.topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.log.Error("dlq write failed", applogger.String("dlq", c.cfg.DLQTopic), applogger.Error(err))
		return false
	}
	return true
}

func (c *Consumer) commit(rec record) {
	r := c.readers[rec.topic]
	if r == nil {
		return
	}
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.CommitMessages(ctx, rec.msg)
		cancel()
		if err == nil {
			return
		}
		time.Sleep(backoff(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
	c.log.Error("offset commit failed", applogger.String("topic", rec.topic), applogger.Error(err))
}

func (c *Consumer) partition(topic string, p int) *sync.Mutex {
	key := fmt.Sprintf("%s/%d", topic, p)
	c.partMu.Lock()
	defer c.partMu.Unlock()
	m, ok := c.parts[key]
	if !ok {
		m = &sync.Mutex{}
		c.parts[key] = m
	}
	return m
}

func wait(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("kafka consumer stop: %w", ctx.Err())
	}
}

// backoff doubles from min per attempt, caps at max and subtracts up to 50% jitter.
func backoff(min, max time.Duration, attempt int) time.Duration {
	d := max
	if attempt < 31 {
		if exp := min << uint(attempt-1); exp > 0 && exp < max {
			d = exp
		}
	}
	return d - time.Duration(rand.Int63n(int64(d)/2+1))
}

var (
	consumerMetricsOnce sync.Once
	consumerBacklog     *prometheus.GaugeVec
	consumerLatency     *prometheus.HistogramVec
)

func registerConsumerMetrics() {
	consumerBacklog = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pulse_kafka_consumer_queue_depth",
		Help: "Records fetched but not yet handled",
	}, []string{"topic"})
	consumerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "pulse_kafka_consumer_handle_seconds",
		Help: "Handling time per record including retries",
	}, []string{"topic"})
}
