package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
		// Aggregated error logs are shipped to Kafka when a topic is set.
		CollectTopic    string        `yaml:"collect_topic"`
		CollectInterval time.Duration `yaml:"collect_interval" default:"30s"`
		CollectMax      int           `yaml:"collect_max" default:"100"`
	} `yaml:"logging"`
	PulseAPI struct {
		BaseURL string        `yaml:"base_url" default:"http://localhost:8000"`
		Timeout time.Duration `yaml:"timeout" default:"15s"`
	} `yaml:"pulse_api"`
	CareAPI struct {
		BaseURL    string        `yaml:"base_url" default:"http://localhost:8001"`
		HospitalID int           `yaml:"hospital_id" default:"1"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"care_api"`
	Worker struct {
		ResultsURL string        `yaml:"results_url" default:"http://localhost:8000/worker/output/latest_results.json"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"worker"`
	Weather struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url" default:"https://api.openweathermap.org/data/2.5"`
		City    string        `yaml:"city" default:"Bangalore"`
		Lat     float64       `yaml:"lat" default:"12.9716"`
		Lon     float64       `yaml:"lon" default:"77.5946"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"weather"`
	Polling struct {
		Enabled      bool   `yaml:"enabled" default:"true"`
		Alerts       string `yaml:"alerts" default:"@every 5s"`
		Weather      string `yaml:"weather" default:"@every 30m"`
		Scenarios    string `yaml:"scenarios" default:"@every 10m"`
		AgentResults string `yaml:"agent_results" default:"@every 30m"`
	} `yaml:"polling"`
	Alerts struct {
		IDBucket      time.Duration `yaml:"id_bucket" default:"1h"`
		Sink          string        `yaml:"sink" default:"none"`
		Topic         string        `yaml:"topic" default:"pulse.alert.events"`
		ForwardToCare bool          `yaml:"forward_to_care" default:"false"`
		BufferSize    int           `yaml:"buffer_size" default:"500"`
		MaxPerSecond  int           `yaml:"max_per_second" default:"50"`
	} `yaml:"alerts"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled" default:"false"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" default:"0"`
			Prefix   string `yaml:"prefix" default:"pulse"`
		} `yaml:"redis"`
		MemorySize int `yaml:"memory_size" default:"500"`
		TTL        struct {
			Weather      time.Duration `yaml:"weather" default:"30m"`
			Scenarios    time.Duration `yaml:"scenarios" default:"10m"`
			AgentResults time.Duration `yaml:"agent_results" default:"30m"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	Queue struct {
		Workers    int           `yaml:"workers" default:"2"`
		RetryLimit int           `yaml:"retry_limit" default:"3"`
		RetryDelay time.Duration `yaml:"retry_delay" default:"10s"`
	} `yaml:"queue"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled" default:"false"`
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"false"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID      string        `yaml:"group_id" default:"pulse-gateway"`
			Workers      int           `yaml:"workers" default:"1"`
			BufferSize   int           `yaml:"buffer_size" default:"16"`
			RetryMax     int           `yaml:"retry_max" default:"3"`
			BackoffMin   time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax   time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic     string        `yaml:"dlq_topic"`
			ResultsTopic string        `yaml:"results_topic" default:"pulse.agent.results"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled" default:"false"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"pulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Chat struct {
		RateCapacity float64 `yaml:"rate_capacity" default:"5"`
		RatePerSec   float64 `yaml:"rate_per_sec" default:"0.5"`
		HistorySize  int     `yaml:"history_size" default:"50"`
	} `yaml:"chat"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := getenv("PULSE_API_URL"); v != "" {
		c.PulseAPI.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("CARE_API_URL"); v != "" {
		c.CareAPI.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("OPENWEATHER_API_KEY"); v != "" {
		c.Weather.APIKey = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			fmt.Sscanf(port, "%d", &c.Cache.Redis.Port)
		}
		c.Cache.Redis.Enabled = true
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.PulseAPI.BaseURL == "" {
		return fmt.Errorf("pulse_api.base_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Alerts.Sink {
	case "none", "kafka", "clickhouse", "both":
	default:
		return fmt.Errorf("alerts.sink must be one of none, kafka, clickhouse, both, got '%s'", c.Alerts.Sink)
	}
	if (c.Alerts.Sink == "kafka" || c.Alerts.Sink == "both") && !c.Kafka.Enabled {
		return fmt.Errorf("alerts.sink=%s requires kafka.enabled", c.Alerts.Sink)
	}
	if (c.Alerts.Sink == "clickhouse" || c.Alerts.Sink == "both") && !c.ClickHouse.Enabled {
		return fmt.Errorf("alerts.sink=%s requires clickhouse.enabled", c.Alerts.Sink)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Alerts.ForwardToCare && !c.Cache.Redis.Enabled {
		return fmt.Errorf("alerts.forward_to_care requires cache.redis.enabled for the outbox queue")
	}
	if c.Alerts.IDBucket <= 0 {
		return fmt.Errorf("alerts.id_bucket must be positive")
	}
	return nil
}
