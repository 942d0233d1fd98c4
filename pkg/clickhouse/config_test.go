package clickhouse

import (
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
)

func TestOptionsNative(t *testing.T) {
	cfg := defaultClientConfig()
	for _, opt := range []ClientOption{
		WithHost("ch"),
		WithDatabase("pulse"),
		WithCredentials("svc", "pw"),
		WithMaxExecutionTime(1500 * time.Millisecond),
	} {
		opt(&cfg)
	}

	o := cfg.options()
	assert.Equal(t, []string{"ch:9000"}, o.Addr)
	assert.Equal(t, clickhouse.Auth{Database: "pulse", Username: "svc", Password: "pw"}, o.Auth)
	assert.Equal(t, clickhouse.Native, o.Protocol)
	assert.Equal(t, 1, o.Settings["max_execution_time"])
	assert.NotContains(t, o.Settings, "async_insert")
}

func TestOptionsHTTPAsync(t *testing.T) {
	cfg := defaultClientConfig()
	WithHTTP(true)(&cfg)
	WithPort(8123)(&cfg)
	WithAsyncInsert(true, true)(&cfg)
	WithPool(4, 2, 0)(&cfg)

	o := cfg.options()
	assert.Equal(t, clickhouse.HTTP, o.Protocol)
	assert.Equal(t, []string{":8123"}, o.Addr)
	assert.Equal(t, 1, o.Settings["async_insert"])
	assert.Equal(t, 1, o.Settings["wait_for_async_insert"])
	assert.Equal(t, 4, o.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, o.ConnMaxLifetime)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
