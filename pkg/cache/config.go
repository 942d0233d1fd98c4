package cache

import "time"

type RedisOption func(*RedisConfig)

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Prefix       string // prepended to every key as "prefix:"
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

func WithRedisAddr(host string, port int) RedisOption {
	return func(c *RedisConfig) {
		c.Host = host
		c.Port = port
	}
}

func WithRedisAuth(password string, db int) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
		c.DB = db
	}
}

func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) { c.Prefix = prefix }
}

func WithRedisPool(size, minIdle int) RedisOption {
	return func(c *RedisConfig) {
		c.PoolSize = size
		c.MinIdleConns = minIdle
	}
}

type MemoryOption func(*MemoryConfig)

type MemoryConfig struct {
	MaxEntries int
	Sweep      time.Duration // 0 disables the background sweep
	MaxTTL     time.Duration // caps every entry, 0 means no cap
}

func WithMemoryMaxSize(n int) MemoryOption {
	return func(c *MemoryConfig) { c.MaxEntries = n }
}

func WithMemorySweep(every time.Duration) MemoryOption {
	return func(c *MemoryConfig) { c.Sweep = every }
}

// WithMemoryMaxTTL caps entry lifetime; the layered cache uses it for L1.
func WithMemoryMaxTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryConfig) { c.MaxTTL = ttl }
}
