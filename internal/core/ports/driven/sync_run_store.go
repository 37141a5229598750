package driven

import (
	"context"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// SyncRunStore persists run summaries and their error logs. This is the
// durable trace of transient failures; cache and counters stay in memory.
type SyncRunStore interface {
	// Save creates or updates a run summary.
	Save(ctx context.Context, run *domain.SyncRunSummary) error

	// Get retrieves a run by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, runID string) (*domain.SyncRunSummary, error)

	// ListByStore retrieves the most recent runs for a store, newest first.
	ListByStore(ctx context.Context, storeID string, limit int) ([]*domain.SyncRunSummary, error)

	// MarkFailed marks a run terminally failed with the given message.
	MarkFailed(ctx context.Context, runID string, message string) error
}
