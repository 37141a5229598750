package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// MockEndpointCache is an in-memory EndpointCache for testing.
// Entries expire against the injected clock (defaults to the wall clock).
type MockEndpointCache struct {
	GetFn func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Clock driven.Clock

	mu      sync.Mutex
	entries map[string]mockCacheEntry
}

type mockCacheEntry struct {
	value  []byte
	expiry time.Time
}

func NewMockEndpointCache() *MockEndpointCache {
	return &MockEndpointCache{
		Clock:   driven.SystemClock{},
		entries: make(map[string]mockCacheEntry),
	}
}

func (m *MockEndpointCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || !m.Clock.Now().Before(entry.expiry) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MockEndpointCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = mockCacheEntry{value: value, expiry: m.Clock.Now().Add(ttl)}
	return nil
}

func (m *MockEndpointCache) Invalidate(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MockEndpointCache) InvalidateStore(ctx context.Context, storeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if driven.CacheKeyBelongsToStore(key, storeID) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len returns the number of live entries (test helper).
func (m *MockEndpointCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
