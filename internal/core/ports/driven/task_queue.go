package driven

import (
	"context"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// TaskQueue handles background sync task queuing and processing.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing.
	Enqueue(ctx context.Context, task *domain.Task) error

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout seconds. Returns nil, nil if the timeout elapses with no task.
	// The returned task is marked processing and will not be handed to
	// other workers.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task.
	Ack(ctx context.Context, taskID string) error

	// Nack indicates processing failed. The task is requeued with backoff
	// while it can retry; otherwise it is marked failed.
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID for status checking.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// Ping checks if the queue backend is healthy.
	Ping(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}

// SchedulerStore handles persistence for recurring sync configuration.
// Scheduled syncs are configuration, not transient queue items.
type SchedulerStore interface {
	// GetScheduledSync retrieves a scheduled sync by ID.
	GetScheduledSync(ctx context.Context, id string) (*domain.ScheduledSync, error)

	// ListScheduledSyncs retrieves all scheduled syncs.
	ListScheduledSyncs(ctx context.Context) ([]*domain.ScheduledSync, error)

	// SaveScheduledSync creates or updates a scheduled sync.
	SaveScheduledSync(ctx context.Context, s *domain.ScheduledSync) error

	// DeleteScheduledSync removes a scheduled sync.
	DeleteScheduledSync(ctx context.Context, id string) error

	// GetDueScheduledSyncs retrieves scheduled syncs that are due to run.
	GetDueScheduledSyncs(ctx context.Context) ([]*domain.ScheduledSync, error)

	// UpdateLastRun updates the last run time and advances the next run.
	UpdateLastRun(ctx context.Context, id string, lastError string) error
}
