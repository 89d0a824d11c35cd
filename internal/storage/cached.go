package storage

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"budgetly/internal/cache"
)

type cachedValue struct {
	value string
	found bool
}

// CachedKV is a read-through, write-through cache in front of another KV.
// Concurrent misses for the same key share one underlying read. A read that
// overlaps a write never repopulates the cache with the value it saw.
type CachedKV struct {
	next  KV
	cache *cache.LRUCache[cachedValue]
	group singleflight.Group

	// Guards generations and orders cache fills against writes.
	mu          sync.Mutex
	generations map[string]uint64
}

var _ KV = (*CachedKV)(nil)

func NewCachedKV(next KV, size int, ttl time.Duration) *CachedKV {
	return &CachedKV{
		next:        next,
		cache:       cache.NewLRUCache[cachedValue](size, ttl),
		generations: make(map[string]uint64),
	}
}

// WithClock replaces the cache's time source, for tests.
func (c *CachedKV) WithClock(now func() time.Time) *CachedKV {
	c.cache.WithClock(now)
	return c
}

// Cleaner exposes the underlying cache so a cache.Manager can clean it.
func (c *CachedKV) Cleaner() cache.Cleaner {
	return c.cache
}

// Stats returns the cache hit/miss counters.
func (c *CachedKV) Stats() cache.Stats {
	return c.cache.Stats()
}

func (c *CachedKV) Read(ctx context.Context, key string) (string, bool, error) {
	if v, ok := c.cache.Get(key); ok {
		return v.value, v.found, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		gen := c.generations[key]
		c.mu.Unlock()

		value, found, err := c.next.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		v := cachedValue{value: value, found: found}

		c.mu.Lock()
		if c.generations[key] == gen {
			c.cache.Set(key, v)
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return "", false, err
	}
	v := res.(cachedValue)
	return v.value, v.found, nil
}

func (c *CachedKV) Write(ctx context.Context, key, value string) error {
	err := c.next.Write(ctx, key, value)

	c.mu.Lock()
	c.generations[key]++
	if err != nil {
		c.cache.Delete(key)
	} else {
		c.cache.Set(key, cachedValue{value: value, found: true})
	}
	c.mu.Unlock()

	// Later misses start a fresh read instead of joining one that began
	// before this write.
	c.group.Forget(key)
	return err
}

// Close closes the wrapped substrate when it holds resources.
func (c *CachedKV) Close() error {
	if closer, ok := c.next.(Closer); ok {
		return closer.Close()
	}
	return nil
}
