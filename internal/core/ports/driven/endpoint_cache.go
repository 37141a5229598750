package driven

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EndpointCache is a time-bounded cache for upstream endpoint payloads.
// A cache entry is a pure optimization, never a source of truth: a stale or
// duplicated fetch is a performance cost, not a correctness violation.
type EndpointCache interface {
	// Get returns the cached payload for key, or false if absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes a single key.
	Invalidate(ctx context.Context, key string) error

	// InvalidateStore removes every key belonging to the store, supporting
	// force-refresh of all of a store's endpoints.
	InvalidateStore(ctx context.Context, storeID string) error
}

// EndpointCacheKey derives the deterministic cache key for a store endpoint.
func EndpointCacheKey(storeID string, endpointIndex int) string {
	return fmt.Sprintf("endpoint:%s:%d", storeID, endpointIndex)
}

// EndpointCacheStorePrefix is the key prefix shared by all of a store's
// endpoint entries.
func EndpointCacheStorePrefix(storeID string) string {
	return fmt.Sprintf("endpoint:%s:", storeID)
}

// CacheKeyBelongsToStore reports whether key was derived from storeID.
func CacheKeyBelongsToStore(key, storeID string) bool {
	return strings.HasPrefix(key, EndpointCacheStorePrefix(storeID))
}
