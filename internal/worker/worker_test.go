package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven/mocks"
	"github.com/vendora-labs/catalog-core/internal/core/services"
)

type workerFixture struct {
	queue    *mocks.MockTaskQueue
	stores   *mocks.MockStoreRepository
	products *mocks.MockProductRepository
	worker   *Worker
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	f := &workerFixture{
		queue:    mocks.NewMockTaskQueue(),
		stores:   mocks.NewMockStoreRepository(),
		products: mocks.NewMockProductRepository(),
	}

	cache := mocks.NewMockEndpointCache()
	client := mocks.NewMockUpstreamClient()
	client.RequestFn = func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
		// Distinct store field per endpoint so records from different
		// stores keep distinct identities.
		body := fmt.Sprintf(`[{"name":"Shirt","brand":"Acme","price":"2990","store":%q,"category":"tops"}]`, url)
		return &driven.UpstreamResponse{Status: 200, Body: []byte(body)}, nil
	}

	orch := services.NewSyncOrchestrator(services.SyncOrchestratorConfig{
		Stores:     f.stores,
		Runs:       mocks.NewMockSyncRunStore(),
		Sink:       mocks.NewMockEventSink(),
		Fetcher:    services.NewFetcher(services.FetcherConfig{Stores: f.stores, Cache: cache, Client: client}),
		Reconciler: services.NewReconciler(services.ReconcilerConfig{Products: f.products}),
		Executor:   services.NewExecutor(services.ExecutorConfig{Sink: mocks.NewMockEventSink(), Runs: mocks.NewMockSyncRunStore()}),
	})

	f.worker = NewWorker(WorkerConfig{
		TaskQueue:      f.queue,
		Orchestrator:   orch,
		DequeueTimeout: 1,
	})
	return f
}

func (f *workerFixture) addStore(t *testing.T, id string) {
	t.Helper()
	err := f.stores.Save(context.Background(), &domain.Store{
		ID:        id,
		Name:      id,
		Enabled:   true,
		Endpoints: []domain.Endpoint{{URL: "http://" + id + ".test/products"}},
	})
	if err != nil {
		t.Fatal(err)
	}
}

// runUntil starts the worker and polls cond until it holds or the
// deadline passes. The worker is stopped before returning.
func (f *workerFixture) runUntil(t *testing.T, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := f.worker.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.worker.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestWorkerProcessesSyncStoreTask(t *testing.T) {
	f := newWorkerFixture(t)
	f.addStore(t, "store-a")

	task := domain.NewSyncStoreTask("store-a", 0, false)
	if err := f.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	f.runUntil(t, func() bool { return len(f.queue.Acked()) == 1 })

	if got := f.queue.Acked(); len(got) != 1 || got[0] != task.ID {
		t.Errorf("acked = %v, want [%s]", got, task.ID)
	}
	if f.products.Count() != 1 {
		t.Errorf("products = %d, want 1", f.products.Count())
	}
}

func TestWorkerProcessesSyncAllTask(t *testing.T) {
	f := newWorkerFixture(t)
	f.addStore(t, "store-a")
	f.addStore(t, "store-b")

	task := domain.NewSyncAllTask(0)
	if err := f.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	f.runUntil(t, func() bool { return len(f.queue.Acked()) == 1 })

	if f.products.Count() != 2 {
		t.Errorf("products = %d, want one per store", f.products.Count())
	}
}

func TestWorkerNacksFailingTask(t *testing.T) {
	f := newWorkerFixture(t)
	// No store registered: the sync fails before reaching the upstream.

	task := domain.NewSyncStoreTask("no-such-store", 0, false)
	if err := f.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	f.runUntil(t, func() bool { return len(f.queue.Nacked()) == 1 })

	if got := f.queue.Nacked(); len(got) != 1 || got[0] != task.ID {
		t.Errorf("nacked = %v, want [%s]", got, task.ID)
	}
	if len(f.queue.Acked()) != 0 {
		t.Errorf("acked = %v, want none", f.queue.Acked())
	}
}

func TestWorkerNacksUnknownTaskType(t *testing.T) {
	f := newWorkerFixture(t)

	task := domain.NewTask(domain.TaskType("reindex"), nil)
	if err := f.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	f.runUntil(t, func() bool { return len(f.queue.Nacked()) == 1 })
}

func TestWorkerTaskMissingStoreID(t *testing.T) {
	f := newWorkerFixture(t)

	task := domain.NewTask(domain.TaskTypeSyncStore, map[string]string{"endpoint_index": "0"})
	if err := f.queue.Enqueue(context.Background(), task); err != nil {
		t.Fatal(err)
	}

	f.runUntil(t, func() bool { return len(f.queue.Nacked()) == 1 })
}

func TestWorkerHealth(t *testing.T) {
	f := newWorkerFixture(t)

	health := f.worker.Health(context.Background())
	if health.Running {
		t.Error("worker should not report running before Start")
	}
	if !health.QueueHealth {
		t.Error("queue should report healthy")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := f.worker.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer f.worker.Stop()

	health = f.worker.Health(context.Background())
	if !health.Running {
		t.Error("worker should report running after Start")
	}
}
