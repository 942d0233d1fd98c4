package di

import (
	"context"
	"fmt"
	"time"

	"PulseGateway/internal/domain/repository"
	"PulseGateway/internal/handler/api"
	mid "PulseGateway/internal/middleware"
	internalrepo "PulseGateway/internal/repository"
	svcmetrics "PulseGateway/internal/service/metrics"
	"PulseGateway/internal/service/ratelimit"
	"PulseGateway/internal/services/agentresults"
	"PulseGateway/internal/services/careapi"
	"PulseGateway/internal/services/openweather"
	"PulseGateway/internal/services/pulseapi"
	"PulseGateway/internal/usecase"
	"PulseGateway/pkg/cache"
	pkgch "PulseGateway/pkg/clickhouse"
	"PulseGateway/pkg/config"
	xhttp "PulseGateway/pkg/http"
	pkgkafka "PulseGateway/pkg/kafka"
	applogger "PulseGateway/pkg/logger"
	"PulseGateway/pkg/metrics"
	"PulseGateway/pkg/queue"
	"PulseGateway/pkg/scheduler"
	"PulseGateway/pkg/server"
)

// ProvideLogger builds the root logger. Aggregated errors go to Kafka when a
// collect topic and a producer are both present.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil && cfg.Logging.CollectTopic != "" {
		l.AddCollector(applogger.CollectorConfig{
			Interval:   cfg.Logging.CollectInterval,
			MaxEntries: cfg.Logging.CollectMax,
			Topic:      cfg.Logging.CollectTopic,
			Publisher:  producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates the Prometheus recorder and registers the view metrics.
func ProvideMetrics() repository.Metrics {
	svcmetrics.Register()
	return metrics.New()
}

// ProvideRedisCache connects to Redis; nil when Redis is disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
		cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCache layers memory over Redis, or uses memory alone.
func ProvideCache(cfg *config.Config, rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize))
	}
	return cache.NewLayeredCache(rc, cfg.Cache.MemorySize, time.Minute)
}

// ProvideClickHouseClient connects and creates the alert history table; nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 5*time.Minute),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Migrate(ctx, internalrepo.AlertSchema(cfg.ClickHouse.Database)...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a producer; nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts, cfg.Kafka.Producer.Async),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the agent results consumer; nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, m repository.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    kc.GroupID,
		Workers:    kc.Workers,
		BufferSize: kc.BufferSize,
		RetryMax:   kc.RetryMax,
		BackoffMin: kc.BackoffMin,
		BackoffMax: kc.BackoffMax,
		DLQTopic:   kc.DLQTopic,
		Logger:     l.With("kafka_consumer"),
		OnFailure: func(topic string, _ error) {
			m.RecordError("consume_" + topic)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideAlertPublisher is nil unless a producer exists.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Alerts.Topic)
}

// ProvideAlertStore is nil unless ClickHouse is connected.
func ProvideAlertStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.AlertStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewClickHouseAlertStore(ch, cfg.ClickHouse.Database, l)
}

func ProvideAlertEventProcessor(
	pub repository.AlertPublisher,
	store repository.AlertStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.AlertEventProcessor {
	return usecase.NewAlertEventProcessor(pub, store, m, cfg.Alerts.Sink)
}

// ProvideAlertPipeline buffers and throttles board events in front of the processor.
func ProvideAlertPipeline(proc *usecase.AlertEventProcessor, m repository.Metrics, cfg *config.Config) *mid.AlertPipeline {
	return mid.NewAlertPipeline(proc, m,
		mid.WithMaxRPS(cfg.Alerts.MaxPerSecond),
		mid.WithBufferSize(cfg.Alerts.BufferSize),
	)
}

func ProvideAlertBoard(pipe *mid.AlertPipeline, m repository.Metrics, l *applogger.Logger) *usecase.AlertBoard {
	return usecase.NewAlertBoard(pipe, m, l)
}

func ProvideAlertSynthesizer(cfg *config.Config) *usecase.AlertSynthesizer {
	return usecase.NewAlertSynthesizer(cfg.Alerts.IDBucket)
}

func ProvideSession() *xhttp.Session { return xhttp.NewSession() }

func ProvidePulseAPI(cfg *config.Config, m repository.Metrics) repository.PulseAPI {
	return pulseapi.New(cfg.PulseAPI.BaseURL, xhttp.NewClient(xhttp.WithTimeout(cfg.PulseAPI.Timeout)), m)
}

func ProvideCareAPI(cfg *config.Config, session *xhttp.Session, m repository.Metrics) repository.CareAPI {
	return careapi.New(cfg.CareAPI.BaseURL, session, m, xhttp.WithTimeout(cfg.CareAPI.Timeout))
}

func ProvideWeatherProvider(cfg *config.Config, m repository.Metrics) repository.WeatherProvider {
	return openweather.New(cfg.Weather.BaseURL, cfg.Weather.APIKey, xhttp.NewClient(xhttp.WithTimeout(cfg.Weather.Timeout)), m)
}

func ProvideAgentResultsSource(cfg *config.Config, m repository.Metrics) repository.AgentResultsSource {
	return agentresults.NewStaticSource(cfg.Worker.ResultsURL, xhttp.NewClient(xhttp.WithTimeout(cfg.Worker.Timeout)), m)
}

// ProvideOutbox is the care-forwarding queue publisher; nil when forwarding is off.
func ProvideOutbox(cfg *config.Config, rc *cache.RedisCache) queue.Publisher {
	if !cfg.Alerts.ForwardToCare || rc == nil {
		return nil
	}
	return queue.NewRedisPublisher(rc.Client(), outboxPrefix(cfg))
}

// ProvideOutboxConsumer drains the outbox into the care backend; nil when forwarding is off.
func ProvideOutboxConsumer(cfg *config.Config, rc *cache.RedisCache, care repository.CareAPI, l *applogger.Logger) *queue.RedisConsumer {
	if !cfg.Alerts.ForwardToCare || rc == nil {
		return nil
	}
	return queue.NewRedisConsumer(l.With("outbox_consumer"), queue.Config{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rc.Client(), outboxPrefix(cfg), usecase.NewCareAlertForwardJob(care, l))
}

func outboxPrefix(cfg *config.Config) string {
	return cfg.Cache.Redis.Prefix + ":outbox:care_alerts"
}

func ProvideDashboardUseCase(
	api repository.PulseAPI,
	synth *usecase.AlertSynthesizer,
	approvals *usecase.ApprovalsUseCase,
	seq *usecase.Sequencer,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(api, synth, approvals, seq, m, l)
}

func ProvideScenarioUseCase(
	api repository.PulseAPI,
	c cache.Service,
	seq *usecase.Sequencer,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ScenarioUseCase {
	return usecase.NewScenarioUseCase(api, c, cfg.Cache.TTL.Scenarios, seq, m, l)
}

func ProvideWeatherUseCase(
	provider repository.WeatherProvider,
	c cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.WeatherUseCase {
	return usecase.NewWeatherUseCase(provider, c, cfg.Cache.TTL.Weather, cfg.Weather.City, cfg.Weather.Lat, cfg.Weather.Lon, m, l)
}

func ProvideAgentResultsUseCase(
	src repository.AgentResultsSource,
	c cache.Service,
	outbox queue.Publisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.AgentResultsUseCase {
	return usecase.NewAgentResultsUseCase(cfg.Kafka.Consumer.ResultsTopic, src, c, cfg.Cache.TTL.AgentResults,
		outbox, cfg.CareAPI.HospitalID, m, l)
}

func ProvideChatUseCase(
	api repository.PulseAPI,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ChatUseCase {
	return usecase.NewChatUseCase(api, limiter, cfg.Chat.RateCapacity, cfg.Chat.RatePerSec, cfg.Chat.HistorySize, m, l)
}

func ProvideHospitalUseCase(care repository.CareAPI, session *xhttp.Session, l *applogger.Logger, cfg *config.Config) *usecase.HospitalUseCase {
	return usecase.NewHospitalUseCase(care, session, cfg.CareAPI.HospitalID, l)
}

// ProvidePollJobs maps the polling section onto scheduler jobs; none when polling is off.
func ProvidePollJobs(
	alerts *usecase.AlertsUseCase,
	weather *usecase.WeatherUseCase,
	scenarios *usecase.ScenarioUseCase,
	agent *usecase.AgentResultsUseCase,
	cfg *config.Config,
) []usecase.PollJob {
	if !cfg.Polling.Enabled {
		return nil
	}
	return usecase.PollJobs(alerts, weather, scenarios, agent, map[string]string{
		"alerts":        cfg.Polling.Alerts,
		"weather":       cfg.Polling.Weather,
		"scenarios":     cfg.Polling.Scenarios,
		"agent_results": cfg.Polling.AgentResults,
	}, cfg.PulseAPI.Timeout+5*time.Second)
}

func ProvideRouter(
	dash *api.DashboardHandler,
	alerts *api.AlertsHandler,
	forecast *api.ForecastHandler,
	insights *api.InsightsHandler,
	care *api.CareHandler,
) *api.Router {
	return api.NewRouter(dash, alerts, forecast, insights, care)
}

// ProvideApp assembles the application and its optional infrastructure.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	router *api.Router,
	sched *scheduler.Scheduler,
	jobs []usecase.PollJob,
	pipe *mid.AlertPipeline,
	proc *usecase.AlertEventProcessor,
	agent *usecase.AgentResultsUseCase,
	consumer *pkgkafka.Consumer,
	producer *pkgkafka.Producer,
	outbox *queue.RedisConsumer,
	chClient *pkgch.Client,
	rc *cache.RedisCache,
	limiter *ratelimit.Limiter,
) *server.App {
	return server.New(cfg, l, router, server.Components{
		Scheduler:  sched,
		PollJobs:   jobs,
		Pipeline:   pipe,
		Processor:  proc,
		Consumer:   consumer,
		Handlers:   []pkgkafka.MessageHandler{agent},
		Producer:   producer,
		Outbox:     outbox,
		ClickHouse: chClient,
		Redis:      rc,
		Limiter:    limiter,
	})
}
