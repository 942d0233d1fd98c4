package cache

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryTTL = 24 * time.Hour

type memoryEntry struct {
	value    []byte
	expireAt time.Time
	usedAt   time.Time
}

// MemoryCache is a bounded in-process cache. When full, the least recently
// used entry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	cfg     MemoryConfig
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := MemoryConfig{MaxEntries: 1000, Sweep: 5 * time.Minute}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}

	mc := &MemoryCache{
		entries: make(map[string]*memoryEntry),
		cfg:     cfg,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cfg.Sweep > 0 {
		go mc.sweep(cfg.Sweep)
	}
	return mc
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	now := mc.now()
	e, ok := mc.entries[key]
	if ok && !now.Before(e.expireAt) {
		delete(mc.entries, key)
		ok = false
	}
	if !ok {
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	e.usedAt = now
	raw := e.value
	mc.mu.Unlock()

	return decode(raw, dest)
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := encode(value)
	if err != nil {
		return err
	}
	mc.store(key, b, ttl)
	return nil
}

func (mc *MemoryCache) store(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = defaultMemoryTTL
	}
	if mc.cfg.MaxTTL > 0 && ttl > mc.cfg.MaxTTL {
		ttl = mc.cfg.MaxTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	now := mc.now()
	if _, exists := mc.entries[key]; !exists && len(mc.entries) >= mc.cfg.MaxEntries {
		mc.evictOldest()
	}
	mc.entries[key] = &memoryEntry{value: b, expireAt: now.Add(ttl), usedAt: now}
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		delete(mc.entries, k)
	}
	return nil
}

// Len counts live and not-yet-swept entries.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.entries)
}

// Close stops the background sweep.
func (mc *MemoryCache) Close() error {
	mc.once.Do(func() { close(mc.stop) })
	return nil
}

// evictOldest must be called with mu held.
func (mc *MemoryCache) evictOldest() {
	var oldest string
	var at time.Time
	for k, e := range mc.entries {
		if oldest == "" || e.usedAt.Before(at) {
			oldest, at = k, e.usedAt
		}
	}
	if oldest != "" {
		delete(mc.entries, oldest)
	}
}

func (mc *MemoryCache) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-mc.stop:
			return
		case <-t.C:
		}
		mc.mu.Lock()
		now := mc.now()
		for k, e := range mc.entries {
			if !now.Before(e.expireAt) {
				delete(mc.entries, k)
			}
		}
		mc.mu.Unlock()
	}
}

var _ Service = (*MemoryCache)(nil)
