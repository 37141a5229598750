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

type syncFixture struct {
	stores   *mocks.MockStoreRepository
	products *mocks.MockProductRepository
	cache    *mocks.MockEndpointCache
	client   *mocks.MockUpstreamClient
	runs     *mocks.MockSyncRunStore
	sink     *mocks.MockEventSink
	orch     *SyncOrchestrator
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		stores:   mocks.NewMockStoreRepository(),
		products: mocks.NewMockProductRepository(),
		cache:    mocks.NewMockEndpointCache(),
		client:   mocks.NewMockUpstreamClient(),
		runs:     mocks.NewMockSyncRunStore(),
		sink:     mocks.NewMockEventSink(),
	}

	executor := NewExecutor(ExecutorConfig{Sink: f.sink, Runs: f.runs})
	executor.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	f.orch = NewSyncOrchestrator(SyncOrchestratorConfig{
		Stores:     f.stores,
		Runs:       f.runs,
		Sink:       f.sink,
		Fetcher:    NewFetcher(FetcherConfig{Stores: f.stores, Cache: f.cache, Client: f.client}),
		Reconciler: NewReconciler(ReconcilerConfig{Products: f.products}),
		Executor:   executor,
	})
	return f
}

func (f *syncFixture) addStore(t *testing.T, id string, endpoints ...domain.Endpoint) {
	t.Helper()
	err := f.stores.Save(context.Background(), &domain.Store{
		ID:        id,
		Name:      id,
		Enabled:   true,
		Endpoints: endpoints,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func (f *syncFixture) respond(body string) {
	f.client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		return &driven.UpstreamResponse{Status: 200, Body: []byte(body)}, nil
	}
}

const twoProductPayload = `[
	{"name":"Shirt","brand":"Acme","price":"2990","store":"acme","category":"tops"},
	{"name":"Pants","brand":"Acme","price":"4990","store":"acme","category":"bottoms"}
]`

func TestSyncStoreCreatesProducts(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})
	f.respond(twoProductPayload)

	run, err := f.orch.SyncStore(context.Background(), "store-a", 0, SyncOptions{})
	if err != nil {
		t.Fatalf("SyncStore() error = %v", err)
	}
	if run.Status != domain.SyncStatusCompleted {
		t.Errorf("status = %s, want completed", run.Status)
	}
	if run.Stats.Fetched != 2 || run.Stats.Created != 2 || run.Stats.Failed != 0 {
		t.Errorf("stats = %+v", run.Stats)
	}
	if f.products.Count() != 2 {
		t.Errorf("products = %d, want 2", f.products.Count())
	}

	saved, err := f.runs.Get(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("run summary not persisted: %v", err)
	}
	if saved.Status != domain.SyncStatusCompleted {
		t.Errorf("persisted status = %s", saved.Status)
	}
}

func TestSyncStoreResyncSkipsUnchanged(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})
	f.respond(twoProductPayload)

	if _, err := f.orch.SyncStore(context.Background(), "store-a", 0, SyncOptions{}); err != nil {
		t.Fatal(err)
	}

	run, err := f.orch.SyncStore(context.Background(), "store-a", 0, SyncOptions{ForceRefresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if run.Stats.Created != 0 || run.Stats.Skipped != 2 || run.Stats.Updated != 0 {
		t.Errorf("stats = %+v, want 2 skipped", run.Stats)
	}
	if f.products.Count() != 2 {
		t.Errorf("products = %d, want 2 after identical re-sync", f.products.Count())
	}
}

func TestSyncStoreBadRecordDoesNotAbortBatch(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})
	f.respond(`[
		{"name":"Shirt","brand":"Acme","price":100},
		{"brand":"Acme","price":100},
		{"name":"Pants","brand":"Acme","price":200}
	]`)

	run, err := f.orch.SyncStore(context.Background(), "store-a", 0, SyncOptions{})
	if err != nil {
		t.Fatalf("SyncStore() error = %v", err)
	}
	if run.Stats.Created != 2 || run.Stats.Failed != 1 {
		t.Errorf("stats = %+v, want 2 created 1 failed", run.Stats)
	}
	if len(run.Errors) != 1 {
		t.Fatalf("expected 1 error record, got %d", len(run.Errors))
	}
}

func TestSyncStoreReconcileFailureIsolated(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})
	f.respond(twoProductPayload)

	inserts := 0
	f.products.InsertFn = func(ctx context.Context, product *domain.Product) (*domain.Product, error) {
		inserts++
		if inserts == 1 {
			return nil, errors.New("connection refused")
		}
		cp := *product
		cp.ID = "product-ok"
		return &cp, nil
	}

	run, err := f.orch.SyncStore(context.Background(), "store-a", 0, SyncOptions{})
	if err != nil {
		t.Fatalf("SyncStore() error = %v", err)
	}
	if run.Stats.Created != 1 || run.Stats.Failed != 1 {
		t.Errorf("stats = %+v, want 1 created 1 failed", run.Stats)
	}
	if run.Status != domain.SyncStatusCompleted {
		t.Errorf("status = %s, record failures do not fail the run", run.Status)
	}
}

func TestSyncStoreUnknownStore(t *testing.T) {
	f := newSyncFixture(t)

	run, err := f.orch.SyncStore(context.Background(), "ghost", 0, SyncOptions{})
	if !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("error = %v, want ErrStoreNotFound", err)
	}
	if run == nil || run.Status != domain.SyncStatusFailed {
		t.Error("failed sync must still return a failed run summary")
	}
}

func TestSyncStoreMissingEndpoint(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})

	run, err := f.orch.SyncStore(context.Background(), "store-a", 3, SyncOptions{})
	if !errors.Is(err, domain.ErrEndpointNotFound) {
		t.Fatalf("error = %v, want ErrEndpointNotFound", err)
	}
	if run.Status != domain.SyncStatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
}

func TestSyncStoreRetriesTransientFetch(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})

	calls := 0
	f.client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		calls++
		if calls == 1 {
			return nil, &domain.UpstreamError{URL: url, Err: errors.New("connection refused")}
		}
		return &driven.UpstreamResponse{Status: 200, Body: []byte(twoProductPayload)}, nil
	}

	run, err := f.orch.SyncStore(context.Background(), "store-a", 0, SyncOptions{})
	if err != nil {
		t.Fatalf("SyncStore() error = %v", err)
	}
	if run.Status != domain.SyncStatusCompleted {
		t.Errorf("status = %s, want completed after retry", run.Status)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}
	if len(run.Errors) != 1 {
		t.Errorf("expected the transient failure in the error log, got %d records", len(run.Errors))
	}
}

func TestSyncStoreFetchExhaustionFailsRun(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})

	f.client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		return nil, &domain.UpstreamError{URL: url, Status: 401}
	}

	run, err := f.orch.SyncStore(context.Background(), "store-a", 0, SyncOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if run.Status != domain.SyncStatusFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
	// 401 is an authentication failure: surfaced immediately, no retries.
	if f.client.Calls() != 1 {
		t.Errorf("upstream calls = %d, want 1", f.client.Calls())
	}
	if f.sink.CountByName(driven.EventCriticalError) != 1 {
		t.Error("expected a critical-error event")
	}
}

func TestSyncAllStoresIsolatesStoreFailures(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a",
		domain.Endpoint{URL: "http://a.test/products"},
		domain.Endpoint{URL: "http://a.test/sale"})
	f.addStore(t, "store-b", domain.Endpoint{URL: "http://b.test/products"})

	// store-a succeeds; store-b's upstream rejects the call.
	f.client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		if url == "http://a.test/products" {
			return &driven.UpstreamResponse{Status: 200, Body: []byte(twoProductPayload)}, nil
		}
		return nil, &domain.UpstreamError{URL: url, Status: 401}
	}

	bulk, err := f.orch.SyncAllStores(context.Background(), 0)
	if err != nil {
		t.Fatalf("SyncAllStores() error = %v", err)
	}
	if bulk.TotalStores != 2 {
		t.Errorf("total = %d, want 2", bulk.TotalStores)
	}
	if bulk.SuccessfulStores != 1 || bulk.FailedStores != 1 {
		t.Errorf("successful = %d failed = %d, want 1/1", bulk.SuccessfulStores, bulk.FailedStores)
	}
	if bulk.Totals.Created != 2 {
		t.Errorf("totals created = %d, store-a's products must land despite store-b failing", bulk.Totals.Created)
	}
	if len(bulk.Runs) != 2 {
		t.Errorf("runs = %d, want one per store", len(bulk.Runs))
	}
	if f.products.Count() != 2 {
		t.Errorf("products = %d, want 2", f.products.Count())
	}
}

func TestSyncAllStoresSequentialOrder(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a", domain.Endpoint{URL: "http://a.test/products"})
	f.addStore(t, "store-b", domain.Endpoint{URL: "http://b.test/products"})

	var urls []string
	f.client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		urls = append(urls, url)
		return &driven.UpstreamResponse{Status: 200, Body: []byte("[]")}, nil
	}

	if _, err := f.orch.SyncAllStores(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	want := []string{"http://a.test/products", "http://b.test/products"}
	if len(urls) != 2 || urls[0] != want[0] || urls[1] != want[1] {
		t.Errorf("request order = %v, want %v", urls, want)
	}
}

func TestSyncAllStoresSkipsStoresWithoutEndpoint(t *testing.T) {
	f := newSyncFixture(t)
	f.addStore(t, "store-a",
		domain.Endpoint{URL: "http://a.test/products"},
		domain.Endpoint{URL: "http://a.test/sale"})
	f.addStore(t, "store-b", domain.Endpoint{URL: "http://b.test/products"})
	f.respond("[]")

	bulk, err := f.orch.SyncAllStores(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if bulk.TotalStores != 1 {
		t.Errorf("total = %d, only store-a has endpoint 1", bulk.TotalStores)
	}
}
