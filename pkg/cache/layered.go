package cache

import (
	"context"
	"time"
)

// LayeredCache reads memory first, then Redis, and writes through to both.
// L1 entries live at most l1TTL so other gateway replicas' writes show up.
type LayeredCache struct {
	l1 *MemoryCache
	l2 *RedisCache
}

func NewLayeredCache(l2 *RedisCache, l1Size int, l1TTL time.Duration) *LayeredCache {
	if l1TTL <= 0 {
		l1TTL = time.Minute
	}
	return &LayeredCache{
		l1: NewMemoryCache(WithMemoryMaxSize(l1Size), WithMemoryMaxTTL(l1TTL)),
		l2: l2,
	}
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.l1.Get(ctx, key, dest); err == nil {
		return nil
	}
	b, err := lc.l2.raw(ctx, key)
	if err != nil {
		return err
	}
	lc.l1.store(key, b, 0)
	return decode(b, dest)
}

// Set fails only when Redis does; L1 is best effort.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.l1.Set(ctx, key, value, ttl)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

// Close stops L1 only; the Redis client is owned by the app.
func (lc *LayeredCache) Close() error { return lc.l1.Close() }

var _ Service = (*LayeredCache)(nil)
