package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven/mocks"
)

func seedStore(t *testing.T, stores *mocks.MockStoreRepository) *domain.Store {
	t.Helper()
	store := &domain.Store{
		ID:      "store-1",
		Name:    "Acme Store",
		Enabled: true,
		Endpoints: []domain.Endpoint{
			{URL: "http://api.acme.test/products", Method: "GET"},
		},
	}
	if err := stores.Save(context.Background(), store); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestFetchEndpointDataCachesPayload(t *testing.T) {
	stores := mocks.NewMockStoreRepository()
	seedStore(t, stores)
	cache := mocks.NewMockEndpointCache()
	client := mocks.NewMockUpstreamClient()
	client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		return &driven.UpstreamResponse{Status: 200, Body: []byte(`[{"name":"Shirt"}]`)}, nil
	}
	f := NewFetcher(FetcherConfig{Stores: stores, Cache: cache, Client: client})

	first, err := f.FetchEndpointData(context.Background(), "store-1", 0, false)
	if err != nil {
		t.Fatalf("FetchEndpointData() error = %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 record, got %d", len(first))
	}

	// Second call with a warm cache must not touch the network.
	second, err := f.FetchEndpointData(context.Background(), "store-1", 0, false)
	if err != nil {
		t.Fatalf("FetchEndpointData() error = %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected 1 record, got %d", len(second))
	}
	if client.Calls() != 1 {
		t.Errorf("upstream calls = %d, want 1", client.Calls())
	}
}

func TestFetchEndpointDataForceRefresh(t *testing.T) {
	stores := mocks.NewMockStoreRepository()
	seedStore(t, stores)
	cache := mocks.NewMockEndpointCache()
	client := mocks.NewMockUpstreamClient()
	f := NewFetcher(FetcherConfig{Stores: stores, Cache: cache, Client: client})

	if _, err := f.FetchEndpointData(context.Background(), "store-1", 0, false); err != nil {
		t.Fatal(err)
	}
	if _, err := f.FetchEndpointData(context.Background(), "store-1", 0, true); err != nil {
		t.Fatal(err)
	}
	if client.Calls() != 2 {
		t.Errorf("upstream calls = %d, want 2 with force refresh", client.Calls())
	}
}

func TestFetchEndpointDataExpiredEntryRefetches(t *testing.T) {
	stores := mocks.NewMockStoreRepository()
	seedStore(t, stores)
	clock := mocks.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	cache := mocks.NewMockEndpointCache()
	cache.Clock = clock
	client := mocks.NewMockUpstreamClient()
	f := NewFetcher(FetcherConfig{Stores: stores, Cache: cache, Client: client, TTL: 600 * time.Second})

	if _, err := f.FetchEndpointData(context.Background(), "store-1", 0, false); err != nil {
		t.Fatal(err)
	}

	clock.Advance(601 * time.Second)

	if _, err := f.FetchEndpointData(context.Background(), "store-1", 0, false); err != nil {
		t.Fatal(err)
	}
	if client.Calls() != 2 {
		t.Errorf("upstream calls = %d, want 2 after TTL expiry", client.Calls())
	}
}

func TestFetchEndpointDataStoreNotFound(t *testing.T) {
	stores := mocks.NewMockStoreRepository()
	f := NewFetcher(FetcherConfig{Stores: stores, Cache: mocks.NewMockEndpointCache(), Client: mocks.NewMockUpstreamClient()})

	_, err := f.FetchEndpointData(context.Background(), "nope", 0, false)
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Errorf("error = %v, want ErrStoreNotFound", err)
	}
}

func TestFetchEndpointDataEndpointNotFound(t *testing.T) {
	stores := mocks.NewMockStoreRepository()
	seedStore(t, stores)
	f := NewFetcher(FetcherConfig{Stores: stores, Cache: mocks.NewMockEndpointCache(), Client: mocks.NewMockUpstreamClient()})

	_, err := f.FetchEndpointData(context.Background(), "store-1", 5, false)
	if !errors.Is(err, domain.ErrEndpointNotFound) {
		t.Errorf("error = %v, want ErrEndpointNotFound", err)
	}
}

func TestFetchEndpointDataUpstreamFailure(t *testing.T) {
	stores := mocks.NewMockStoreRepository()
	seedStore(t, stores)
	cache := mocks.NewMockEndpointCache()
	client := mocks.NewMockUpstreamClient()
	client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		return nil, &domain.UpstreamError{URL: url, Status: 500}
	}
	f := NewFetcher(FetcherConfig{Stores: stores, Cache: cache, Client: client})

	_, err := f.FetchEndpointData(context.Background(), "store-1", 0, false)
	var uerr *domain.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if uerr.Status != 500 {
		t.Errorf("status = %d, want 500", uerr.Status)
	}
	// Failed fetches must not populate the cache.
	if cache.Len() != 0 {
		t.Errorf("cache entries = %d, want 0", cache.Len())
	}
}

func TestFetchEndpointDataPassesDescriptor(t *testing.T) {
	stores := mocks.NewMockStoreRepository()
	store := seedStore(t, stores)
	store.Endpoints[0].Method = "POST"
	client := mocks.NewMockUpstreamClient()
	var gotURL, gotMethod string
	var gotTimeout time.Duration
	client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		gotURL, gotMethod, gotTimeout = url, method, timeout
		return &driven.UpstreamResponse{Status: 200, Body: []byte("[]")}, nil
	}
	f := NewFetcher(FetcherConfig{Stores: stores, Cache: mocks.NewMockEndpointCache(), Client: client})

	if _, err := f.FetchEndpointData(context.Background(), "store-1", 0, false); err != nil {
		t.Fatal(err)
	}
	if gotURL != "http://api.acme.test/products" {
		t.Errorf("url = %q", gotURL)
	}
	if gotMethod != "POST" {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotTimeout != defaultFetchTimeout {
		t.Errorf("timeout = %v, want %v", gotTimeout, defaultFetchTimeout)
	}
}

func TestDecodeRawProducts(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		records int
		wantErr bool
	}{
		{"bare array", `[{"name":"a"},{"name":"b"}]`, 2, false},
		{"products wrapper", `{"products":[{"name":"a"}]}`, 1, false},
		{"items wrapper", `{"items":[{"name":"a"}]}`, 1, false},
		{"data wrapper", `{"data":[]}`, 0, false},
		{"no list key", `{"meta":{}}`, 0, true},
		{"not json", `<html>`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws, err := decodeRawProducts([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeRawProducts() error = %v", err)
			}
			if len(raws) != tt.records {
				t.Errorf("records = %d, want %d", len(raws), tt.records)
			}
		})
	}
}
