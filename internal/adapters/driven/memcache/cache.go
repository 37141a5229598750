package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

const defaultSweepInterval = 60 * time.Second

// Cache is an in-process EndpointCache. Entries expire against the
// injected clock; a lazy check on Get plus a periodic sweep bound
// memory growth. Correctness never depends on sweep timing.
type Cache struct {
	clock driven.Clock

	mu      sync.RWMutex
	entries map[string]entry

	sweepEvery time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

type entry struct {
	value  []byte
	expiry time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock injects the clock used for expiry decisions.
func WithClock(clock driven.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithSweepInterval overrides how often expired entries are collected.
// Zero disables the background sweeper.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) { c.sweepEvery = d }
}

// New creates an endpoint cache and starts its sweeper.
func New(opts ...Option) *Cache {
	c := &Cache{
		clock:      driven.SystemClock{},
		entries:    make(map[string]entry),
		sweepEvery: defaultSweepInterval,
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sweepEvery > 0 {
		go c.sweepLoop()
	}
	return c
}

var _ driven.EndpointCache = (*Cache)(nil)

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.clock.Now().Before(e.expiry) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiry: c.clock.Now().Add(ttl)}
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *Cache) InvalidateStore(ctx context.Context, storeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if driven.CacheKeyBelongsToStore(key, storeID) {
			delete(c.entries, key)
		}
	}
	return nil
}

// Len returns the number of entries, expired ones included until swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if !now.Before(e.expiry) {
			delete(c.entries, key)
		}
	}
}
