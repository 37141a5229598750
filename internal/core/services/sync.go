package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

const defaultFetchAttempts = 4

// SyncOptions tunes a single sync run.
type SyncOptions struct {
	// ForceRefresh bypasses and invalidates the endpoint cache,
	// guaranteeing a live upstream call.
	ForceRefresh bool
}

// SyncOrchestrator coordinates the catalog sync pipeline:
//  1. Resolve the store and endpoint
//  2. Fetch the endpoint payload (cache-first, retried)
//  3. Normalize each raw record
//  4. Reconcile each normalized record against the product store
//  5. Persist the run summary and aggregate counts
//
// Failures isolate at record granularity within a run and at store
// granularity within a bulk run.
type SyncOrchestrator struct {
	stores     driven.StoreRepository
	runs       driven.SyncRunStore
	sink       driven.EventSink
	clock      driven.Clock
	fetcher    *Fetcher
	reconciler *Reconciler
	executor   *Executor
	logger     *slog.Logger

	fetchAttempts int
}

// SyncOrchestratorConfig holds dependencies for SyncOrchestrator.
type SyncOrchestratorConfig struct {
	Stores     driven.StoreRepository
	Runs       driven.SyncRunStore
	Sink       driven.EventSink
	Clock      driven.Clock
	Fetcher    *Fetcher
	Reconciler *Reconciler
	Executor   *Executor
	Logger     *slog.Logger

	// FetchAttempts caps attempts for the endpoint fetch, including the
	// first. Defaults to 4 (one call plus up to three retries).
	FetchAttempts int
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(cfg SyncOrchestratorConfig) *SyncOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = driven.SystemClock{}
	}
	attempts := cfg.FetchAttempts
	if attempts <= 0 {
		attempts = defaultFetchAttempts
	}

	return &SyncOrchestrator{
		stores:        cfg.Stores,
		runs:          cfg.Runs,
		sink:          cfg.Sink,
		clock:         clock,
		fetcher:       cfg.Fetcher,
		reconciler:    cfg.Reconciler,
		executor:      cfg.Executor,
		logger:        logger,
		fetchAttempts: attempts,
	}
}

// SyncStore synchronizes one store endpoint. It always returns a run
// summary; on error the summary carries the failed status and the error
// log alongside the returned error.
func (o *SyncOrchestrator) SyncStore(ctx context.Context, storeID string, endpointIndex int, opts SyncOptions) (*domain.SyncRunSummary, error) {
	run := &domain.SyncRunSummary{
		RunID:         domain.GenerateID(),
		StoreID:       storeID,
		EndpointIndex: endpointIndex,
		Status:        domain.SyncStatusRunning,
		StartedAt:     o.clock.Now(),
	}

	o.logger.Info("starting sync",
		"run_id", run.RunID, "store_id", storeID, "endpoint_index", endpointIndex,
		"force_refresh", opts.ForceRefresh)

	store, err := o.stores.FindByID(ctx, storeID)
	if err != nil {
		return o.failRun(ctx, run, fmt.Errorf("resolve store: %w", err))
	}
	if !store.HasEndpointAt(endpointIndex) {
		return o.failRun(ctx, run, fmt.Errorf("store %s: %w", storeID, domain.ErrEndpointNotFound))
	}

	o.saveRun(ctx, run)
	o.emitStatus(ctx, run)

	var raws []domain.RawProduct
	op := OperationContext{Name: "fetch-endpoint", StoreID: storeID, RunID: run.RunID, Run: run}
	fetchErr := o.executor.Execute(ctx, op, o.fetchAttempts, func(ctx context.Context, attempt int) error {
		// Retries go to the live upstream, never the cache.
		force := opts.ForceRefresh || attempt > 1
		fetched, err := o.fetcher.FetchEndpointData(ctx, storeID, endpointIndex, force)
		if err != nil {
			return err
		}
		raws = fetched
		return nil
	})
	if fetchErr != nil {
		o.executor.HandleCriticalError(ctx, fetchErr, storeID, run.RunID)
		return o.failRun(ctx, run, fmt.Errorf("fetch endpoint: %w", fetchErr))
	}

	run.Stats.Fetched = len(raws)

	products, failures := NormalizeBatch(raws)
	for _, f := range failures {
		run.Stats.Failed++
		run.RecordError(domain.ErrorRecord{
			Kind:      Classify(f.Err),
			Message:   fmt.Sprintf("record %d: %v", f.Index, f.Err),
			Attempt:   1,
			Retryable: false,
			Timestamp: o.clock.Now(),
		})
	}

	for _, p := range products {
		result, err := o.reconciler.Reconcile(ctx, p)
		if err != nil {
			run.Stats.Failed++
			run.RecordError(domain.ErrorRecord{
				Kind:      Classify(err),
				Message:   err.Error(),
				Attempt:   1,
				Retryable: false,
				Timestamp: o.clock.Now(),
			})
			continue
		}
		switch result.Action {
		case ReconcileCreated:
			run.Stats.Created++
		case ReconcileUpdated:
			run.Stats.Updated++
		case ReconcileSkipped:
			run.Stats.Skipped++
		}
	}

	run.Status = domain.SyncStatusCompleted
	run.CompletedAt = o.clock.Now()
	o.saveRun(ctx, run)
	o.emitStatus(ctx, run)

	o.logger.Info("sync completed",
		"run_id", run.RunID, "store_id", storeID,
		"fetched", run.Stats.Fetched, "created", run.Stats.Created,
		"updated", run.Stats.Updated, "skipped", run.Stats.Skipped,
		"failed", run.Stats.Failed,
		"duration", run.CompletedAt.Sub(run.StartedAt))

	return run, nil
}

// SyncAllStores synchronizes every enabled store exposing an endpoint at
// the given index, sequentially. One store's failure is recorded in its
// slot of the aggregate and never aborts the remaining stores. The
// summary is always returned; only a failure to list stores errors.
func (o *SyncOrchestrator) SyncAllStores(ctx context.Context, endpointIndex int) (*domain.BulkSyncSummary, error) {
	bulk := &domain.BulkSyncSummary{StartedAt: o.clock.Now()}

	stores, err := o.stores.FindWithEndpointAt(ctx, endpointIndex)
	if err != nil {
		return nil, fmt.Errorf("list stores with endpoint %d: %w", endpointIndex, err)
	}
	bulk.TotalStores = len(stores)

	o.logger.Info("starting bulk sync",
		"endpoint_index", endpointIndex, "stores", len(stores))

	for _, store := range stores {
		run, err := o.SyncStore(ctx, store.ID, endpointIndex, SyncOptions{})
		bulk.Runs = append(bulk.Runs, run)
		bulk.Totals.Add(run.Stats)
		if err != nil {
			bulk.FailedStores++
			o.logger.Warn("store sync failed in bulk run",
				"store_id", store.ID, "error", err)
			continue
		}
		bulk.SuccessfulStores++
	}

	bulk.CompletedAt = o.clock.Now()

	o.logger.Info("bulk sync completed",
		"endpoint_index", endpointIndex,
		"total", bulk.TotalStores, "succeeded", bulk.SuccessfulStores,
		"failed", bulk.FailedStores,
		"created", bulk.Totals.Created, "updated", bulk.Totals.Updated,
		"skipped", bulk.Totals.Skipped)

	return bulk, nil
}

// failRun stamps the run failed, persists it, and returns it with the
// error. The caller always gets a summary, even on failure.
func (o *SyncOrchestrator) failRun(ctx context.Context, run *domain.SyncRunSummary, err error) (*domain.SyncRunSummary, error) {
	run.Status = domain.SyncStatusFailed
	run.Error = err.Error()
	run.CompletedAt = o.clock.Now()
	o.saveRun(ctx, run)
	o.emitStatus(ctx, run)

	o.logger.Error("sync failed",
		"run_id", run.RunID, "store_id", run.StoreID, "error", err)
	return run, err
}

func (o *SyncOrchestrator) saveRun(ctx context.Context, run *domain.SyncRunSummary) {
	if o.runs == nil {
		return
	}
	if err := o.runs.Save(ctx, run); err != nil {
		o.logger.Warn("failed to persist run summary", "run_id", run.RunID, "error", err)
	}
}

func (o *SyncOrchestrator) emitStatus(ctx context.Context, run *domain.SyncRunSummary) {
	if o.sink == nil {
		return
	}
	o.sink.Emit(ctx, driven.EventStatusChanged, map[string]interface{}{
		"run_id":   run.RunID,
		"store_id": run.StoreID,
		"status":   string(run.Status),
	})
}
