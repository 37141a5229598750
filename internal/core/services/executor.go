package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// OperationContext identifies a retried operation for events and the
// run's error log. Run may be nil when no run is being tracked.
type OperationContext struct {
	Name    string
	StoreID string
	RunID   string
	Run     *domain.SyncRunSummary
}

// Executor runs an operation with classified retries. Each failure is
// classified, logged against the run, and emitted as an event together
// with the computed next-retry delay. This is the only place in the
// sync core that sleeps.
type Executor struct {
	sink       driven.EventSink
	runs       driven.SyncRunStore
	clock      driven.Clock
	logger     *slog.Logger
	maxElapsed time.Duration

	// sleep is replaceable in tests so retry delays don't slow the suite.
	sleep func(ctx context.Context, d time.Duration) error
}

// ExecutorConfig holds dependencies for Executor.
type ExecutorConfig struct {
	Sink   driven.EventSink
	Runs   driven.SyncRunStore
	Clock  driven.Clock
	Logger *slog.Logger

	// MaxElapsed bounds the total time spent across all attempts
	// including pending delays. Zero means unbounded.
	MaxElapsed time.Duration
}

// NewExecutor creates a new retrying executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = driven.SystemClock{}
	}

	return &Executor{
		sink:       cfg.Sink,
		runs:       cfg.Runs,
		clock:      clock,
		logger:     logger,
		maxElapsed: cfg.MaxElapsed,
		sleep:      sleepContext,
	}
}

// Execute runs fn up to maxAttempts times. On failure it classifies the
// error, records it on the operation's run, emits an error event, and
// either sleeps per the retry policy or returns the error. Terminal
// failures are always returned, never swallowed.
func (e *Executor) Execute(ctx context.Context, op OperationContext, maxAttempts int, fn func(ctx context.Context, attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	start := e.clock.Now()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		e.emit(ctx, driven.EventAttemptStarted, map[string]interface{}{
			"operation":    op.Name,
			"store_id":     op.StoreID,
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		})

		err := fn(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				e.logger.Info("operation recovered",
					"operation", op.Name, "store_id", op.StoreID, "attempt", attempt)
				e.emit(ctx, driven.EventAttemptSucceeded, map[string]interface{}{
					"operation": op.Name,
					"store_id":  op.StoreID,
					"attempt":   attempt,
				})
			}
			return nil
		}

		kind := Classify(err)
		delay := DelayFor(StrategyFor(kind), attempt)
		retryable := ShouldRetry(kind, attempt) && attempt < maxAttempts
		if retryable && e.maxElapsed > 0 && e.clock.Now().Sub(start)+delay > e.maxElapsed {
			retryable = false
		}

		rec := domain.ErrorRecord{
			Kind:      kind,
			Message:   err.Error(),
			Attempt:   attempt,
			Retryable: retryable,
			Timestamp: e.clock.Now(),
		}
		if op.Run != nil {
			op.Run.RecordError(rec)
		}

		payload := map[string]interface{}{
			"operation": op.Name,
			"store_id":  op.StoreID,
			"kind":      string(kind),
			"message":   err.Error(),
			"attempt":   attempt,
			"retryable": retryable,
		}
		if retryable {
			payload["next_retry_ms"] = delay.Milliseconds()
		}
		e.emit(ctx, driven.EventError, payload)

		e.logger.Warn("operation attempt failed",
			"operation", op.Name, "store_id", op.StoreID,
			"kind", string(kind), "attempt", attempt, "retryable", retryable,
			"error", err)

		if !retryable {
			return err
		}
		if err := e.sleep(ctx, delay); err != nil {
			return err
		}
	}

	// Unreachable: the final attempt's failure returns above.
	return nil
}

// HandleCriticalError marks a run terminally failed and emits terminal
// events. Callers use it when a failure must stop the whole sync for a
// store regardless of retry policy; it never retries.
func (e *Executor) HandleCriticalError(ctx context.Context, err error, storeID, runID string) {
	kind := Classify(err)

	e.logger.Error("critical sync failure",
		"store_id", storeID, "run_id", runID, "kind", string(kind), "error", err)

	if e.runs != nil && runID != "" {
		if markErr := e.runs.MarkFailed(ctx, runID, err.Error()); markErr != nil {
			e.logger.Warn("failed to mark run failed", "run_id", runID, "error", markErr)
		}
	}

	e.emit(ctx, driven.EventCriticalError, map[string]interface{}{
		"store_id": storeID,
		"run_id":   runID,
		"kind":     string(kind),
		"message":  err.Error(),
	})
	e.emit(ctx, driven.EventStatusChanged, map[string]interface{}{
		"store_id": storeID,
		"run_id":   runID,
		"status":   string(domain.SyncStatusFailed),
	})
}

func (e *Executor) emit(ctx context.Context, event string, payload map[string]interface{}) {
	if e.sink == nil {
		return
	}
	e.sink.Emit(ctx, event, payload)
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
