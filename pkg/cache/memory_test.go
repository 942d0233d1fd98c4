package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weather struct {
	Temp int    `json:"temp"`
	City string `json:"city"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "w", weather{Temp: 28, City: "Bangalore"}, time.Minute))

	var got weather
	require.NoError(t, mc.Get(ctx, "w", &got))
	assert.Equal(t, weather{Temp: 28, City: "Bangalore"}, got)

	var s string
	require.NoError(t, mc.Set(ctx, "s", "hello", time.Minute))
	require.NoError(t, mc.Get(ctx, "s", &s))
	assert.Equal(t, "hello", s)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	var v int
	assert.ErrorIs(t, mc.Get(ctx, "a", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "c", &v))
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, mc.Len())
}

func TestMemoryCacheMaxTTL(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxTTL(time.Minute), WithMemorySweep(0))
	defer mc.Close()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return base }
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Hour))
	mc.now = func() time.Time { return base.Add(2 * time.Minute) }

	var s string
	assert.ErrorIs(t, mc.Get(ctx, "k", &s), ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "scenarios:7", Key("scenarios", 7))
	assert.Equal(t, "agent:latest", Key("agent", "latest"))
	assert.Equal(t, "weather", Key("weather"))
}

func TestRemember(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (weather, error) {
		calls++
		return weather{Temp: 30}, nil
	}

	v, hit, err := Remember(ctx, mc, "w", time.Minute, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 30, v.Temp)

	v, hit, err = Remember(ctx, mc, "w", time.Minute, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 30, v.Temp)
	assert.Equal(t, 1, calls)
}

func TestRememberLoadErrorNotCached(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_, _, err := Remember(ctx, mc, "x", time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("down")
	})
	require.Error(t, err)

	assert.Zero(t, mc.Len())
}

func TestRememberNilCache(t *testing.T) {
	v, hit, err := Remember[int](context.Background(), nil, "k", time.Minute, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, v)
}
