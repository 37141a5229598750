package redis

import (
	"context"
	"testing"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

func TestEndpointCacheSetGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewEndpointCache(client)
	ctx := context.Background()

	key := driven.EndpointCacheKey("store-1", 0)
	if err := cache.Set(ctx, key, []byte(`[{"name":"Shirt"}]`), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(value) != `[{"name":"Shirt"}]` {
		t.Errorf("value = %s", value)
	}
}

func TestEndpointCacheMiss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewEndpointCache(client)

	_, ok, err := cache.Get(context.Background(), driven.EndpointCacheKey("store-1", 0))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("expected miss for absent key")
	}
}

func TestEndpointCacheExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewEndpointCache(client)
	ctx := context.Background()

	key := driven.EndpointCacheKey("store-1", 0)
	if err := cache.Set(ctx, key, []byte("x"), 600*time.Second); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(601 * time.Second)

	_, ok, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("entry should have expired")
	}
}

func TestEndpointCacheInvalidate(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewEndpointCache(client)
	ctx := context.Background()

	key := driven.EndpointCacheKey("store-1", 0)
	if err := cache.Set(ctx, key, []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := cache.Invalidate(ctx, key); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, ok, _ := cache.Get(ctx, key); ok {
		t.Error("entry should be gone")
	}
}

func TestEndpointCacheInvalidateStore(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewEndpointCache(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cache.Set(ctx, driven.EndpointCacheKey("store-1", i), []byte("x"), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := cache.Set(ctx, driven.EndpointCacheKey("store-2", 0), []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}

	if err := cache.InvalidateStore(ctx, "store-1"); err != nil {
		t.Fatalf("InvalidateStore() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, ok, _ := cache.Get(ctx, driven.EndpointCacheKey("store-1", i)); ok {
			t.Errorf("store-1 entry %d should be invalidated", i)
		}
	}
	if _, ok, _ := cache.Get(ctx, driven.EndpointCacheKey("store-2", 0)); !ok {
		t.Error("store-2's entry must survive")
	}
}
