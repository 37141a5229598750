package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

const schedulerLockName = "catalog-scheduler"

// Scheduler enqueues sync tasks on their configured intervals.
// It runs on worker nodes and polls the scheduler store for due syncs.
//
// For multi-worker deployments, configure a DistributedLock to prevent
// duplicate task enqueuing across instances.
type Scheduler struct {
	store  driven.SchedulerStore
	queue  driven.TaskQueue
	lock   driven.DistributedLock
	logger *slog.Logger

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	interval     time.Duration
	lockTTL      time.Duration
	lockRequired bool
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	Store        driven.SchedulerStore
	Queue        driven.TaskQueue
	Lock         driven.DistributedLock // optional, for multi-instance coordination
	Logger       *slog.Logger
	PollInterval time.Duration // how often to check for due syncs (default: 30s)
	LockTTL      time.Duration // TTL for the distributed lock (default: 60s)
	LockRequired bool          // skip the cycle when the lock cannot be acquired
}

// NewScheduler creates a new scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.PollInterval
	if interval == 0 {
		interval = 30 * time.Second
	}

	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 60 * time.Second
	}

	return &Scheduler{
		store:        cfg.Store,
		queue:        cfg.Queue,
		lock:         cfg.Lock,
		logger:       logger,
		interval:     interval,
		lockTTL:      lockTTL,
		lockRequired: cfg.LockRequired,
	}
}

// Start begins the scheduler loop. It runs until Stop is called or the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("scheduler starting", "poll_interval", s.interval)

	go s.run(ctx)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.checkAndEnqueue(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkAndEnqueue(ctx)
		}
	}
}

// checkAndEnqueue enqueues a task for every due scheduled sync. With a
// distributed lock configured, the cycle runs only on the instance
// holding the lock.
func (s *Scheduler) checkAndEnqueue(ctx context.Context) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, schedulerLockName, s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire scheduler lock", "error", err)
			if s.lockRequired {
				return
			}
		} else if !acquired {
			s.logger.Debug("scheduler lock held by another instance")
			if s.lockRequired {
				return
			}
		} else {
			defer func() {
				if err := s.lock.Release(ctx, schedulerLockName); err != nil {
					s.logger.Warn("failed to release scheduler lock", "error", err)
				}
			}()
		}
	}

	due, err := s.store.GetDueScheduledSyncs(ctx)
	if err != nil {
		s.logger.Error("failed to get due scheduled syncs", "error", err)
		return
	}

	for _, scheduled := range due {
		if !scheduled.Enabled || !scheduled.IsDue() {
			continue
		}

		task := taskForSchedule(scheduled)

		if err := s.queue.Enqueue(ctx, task); err != nil {
			s.logger.Error("failed to enqueue scheduled sync",
				"scheduled_id", scheduled.ID,
				"error", err,
			)
			_ = s.store.UpdateLastRun(ctx, scheduled.ID, err.Error())
			continue
		}

		s.logger.Info("enqueued scheduled sync",
			"scheduled_id", scheduled.ID,
			"task_id", task.ID,
			"task_type", task.Type,
		)

		if err := s.store.UpdateLastRun(ctx, scheduled.ID, ""); err != nil {
			s.logger.Warn("failed to update scheduled sync last run",
				"scheduled_id", scheduled.ID,
				"error", err,
			)
		}
	}
}

// taskForSchedule builds the queue task a schedule stands for: a single
// store sync when a store is pinned, otherwise an all-stores sync.
func taskForSchedule(scheduled *domain.ScheduledSync) *domain.Task {
	if scheduled.Type == domain.TaskTypeSyncStore && scheduled.StoreID != "" {
		return domain.NewSyncStoreTask(scheduled.StoreID, scheduled.EndpointIndex, false)
	}
	return domain.NewSyncAllTask(scheduled.EndpointIndex)
}

// CreateScheduledSync creates a new scheduled sync.
func (s *Scheduler) CreateScheduledSync(ctx context.Context, scheduled *domain.ScheduledSync) error {
	return s.store.SaveScheduledSync(ctx, scheduled)
}

// GetScheduledSync retrieves a scheduled sync by ID.
func (s *Scheduler) GetScheduledSync(ctx context.Context, id string) (*domain.ScheduledSync, error) {
	return s.store.GetScheduledSync(ctx, id)
}

// ListScheduledSyncs lists all scheduled syncs.
func (s *Scheduler) ListScheduledSyncs(ctx context.Context) ([]*domain.ScheduledSync, error) {
	return s.store.ListScheduledSyncs(ctx)
}

// UpdateScheduledSync updates a scheduled sync.
func (s *Scheduler) UpdateScheduledSync(ctx context.Context, scheduled *domain.ScheduledSync) error {
	return s.store.SaveScheduledSync(ctx, scheduled)
}

// DeleteScheduledSync deletes a scheduled sync.
func (s *Scheduler) DeleteScheduledSync(ctx context.Context, id string) error {
	return s.store.DeleteScheduledSync(ctx, id)
}

// EnableScheduledSync enables a scheduled sync.
func (s *Scheduler) EnableScheduledSync(ctx context.Context, id string) error {
	scheduled, err := s.store.GetScheduledSync(ctx, id)
	if err != nil {
		return err
	}
	scheduled.Enabled = true
	return s.store.SaveScheduledSync(ctx, scheduled)
}

// DisableScheduledSync disables a scheduled sync.
func (s *Scheduler) DisableScheduledSync(ctx context.Context, id string) error {
	scheduled, err := s.store.GetScheduledSync(ctx, id)
	if err != nil {
		return err
	}
	scheduled.Enabled = false
	return s.store.SaveScheduledSync(ctx, scheduled)
}

// TriggerNow immediately enqueues a scheduled sync, ignoring its timer.
func (s *Scheduler) TriggerNow(ctx context.Context, id string) (*domain.Task, error) {
	scheduled, err := s.store.GetScheduledSync(ctx, id)
	if err != nil {
		return nil, err
	}

	task := taskForSchedule(scheduled)

	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("manually triggered scheduled sync",
		"scheduled_id", scheduled.ID,
		"task_id", task.ID,
	)

	return task, nil
}
