package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultCacheTTL     = 600 * time.Second
)

// Fetcher retrieves raw product payloads from store endpoints,
// cache-first. A cache hit never triggers a network call.
type Fetcher struct {
	stores  driven.StoreRepository
	cache   driven.EndpointCache
	client  driven.UpstreamClient
	logger  *slog.Logger
	timeout time.Duration
	ttl     time.Duration
}

// FetcherConfig holds dependencies for Fetcher.
type FetcherConfig struct {
	Stores driven.StoreRepository
	Cache  driven.EndpointCache
	Client driven.UpstreamClient
	Logger *slog.Logger

	// Timeout bounds each upstream request. Defaults to 10s.
	Timeout time.Duration

	// TTL bounds cached payload lifetime. Defaults to 600s.
	TTL time.Duration
}

// NewFetcher creates a new endpoint fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &Fetcher{
		stores:  cfg.Stores,
		cache:   cfg.Cache,
		client:  cfg.Client,
		logger:  logger,
		timeout: timeout,
		ttl:     ttl,
	}
}

// FetchEndpointData fetches and parses the payload of a store endpoint.
// With forceRefresh the cache key is invalidated first, guaranteeing a
// live upstream call. Returns domain.ErrStoreNotFound or
// domain.ErrEndpointNotFound for bad coordinates, *domain.UpstreamError
// for failed calls.
func (f *Fetcher) FetchEndpointData(ctx context.Context, storeID string, endpointIndex int, forceRefresh bool) ([]domain.RawProduct, error) {
	key := driven.EndpointCacheKey(storeID, endpointIndex)

	if forceRefresh {
		if err := f.cache.Invalidate(ctx, key); err != nil {
			f.logger.Warn("cache invalidation failed", "key", key, "error", err)
		}
	} else {
		cached, ok, err := f.cache.Get(ctx, key)
		if err != nil {
			f.logger.Warn("cache read failed", "key", key, "error", err)
		} else if ok {
			f.logger.Debug("cache hit", "key", key)
			return decodeRawProducts(cached)
		}
	}

	store, err := f.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	endpoint, err := store.EndpointAt(endpointIndex)
	if err != nil {
		return nil, err
	}

	method := endpoint.Method
	if method == "" {
		method = "GET"
	}

	resp, err := f.client.Request(ctx, endpoint.URL, method, f.timeout)
	if err != nil {
		return nil, err
	}

	raws, err := decodeRawProducts(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, key, resp.Body, f.ttl); err != nil {
		f.logger.Warn("cache write failed", "key", key, "error", err)
	}

	f.logger.Debug("endpoint fetched",
		"store_id", storeID, "endpoint_index", endpointIndex, "records", len(raws))
	return raws, nil
}

// decodeRawProducts parses an upstream payload into raw records. Accepts
// a bare array or an object wrapping the array under a well-known key
// (products, items, data), tried in that order.
func decodeRawProducts(body []byte) ([]domain.RawProduct, error) {
	var list []domain.RawProduct
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("parse upstream payload: %w", err)
	}
	for _, key := range []string{"products", "items", "data"} {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parse upstream payload %q: %w", key, err)
		}
		return list, nil
	}
	return nil, fmt.Errorf("parse upstream payload: no product list found")
}
