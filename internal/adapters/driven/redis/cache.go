package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EndpointCache = (*EndpointCache)(nil)

const cachePrefix = "catalog:cache:"

// EndpointCache implements driven.EndpointCache on Redis. Expiry rides
// on Redis TTLs, so entries survive process restarts but never outlive
// their TTL. Useful when several workers share one cache.
type EndpointCache struct {
	client *redis.Client
}

// NewEndpointCache creates a new Redis-backed endpoint cache.
func NewEndpointCache(client *redis.Client) *EndpointCache {
	return &EndpointCache{client: client}
}

func (c *EndpointCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, cachePrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, true, nil
}

func (c *EndpointCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, cachePrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *EndpointCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cachePrefix+key).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", key, err)
	}
	return nil
}

// InvalidateStore removes every cached entry derived from the store.
// SCAN keeps this safe against large keyspaces.
func (c *EndpointCache) InvalidateStore(ctx context.Context, storeID string) error {
	pattern := cachePrefix + driven.EndpointCacheStorePrefix(storeID) + "*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", storeID, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate store %s: %w", storeID, err)
	}
	return nil
}

// Ping checks if the Redis backend is healthy.
func (c *EndpointCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
