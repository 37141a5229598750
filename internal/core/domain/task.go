package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GenerateID creates a unique random ID.
func GenerateID() string {
	return uuid.NewString()
}

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeSyncStore syncs a single store's endpoint
	TaskTypeSyncStore TaskType = "sync_store"
	// TaskTypeSyncAll syncs every store exposing the requested endpoint
	TaskTypeSyncAll TaskType = "sync_all"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background sync job to be processed by workers
type Task struct {
	ID   string   `json:"id"`
	Type TaskType `json:"type"`

	// Payload contains task-specific data.
	// For sync_store: {"store_id": "...", "endpoint_index": "0", "force_refresh": "true"}
	// For sync_all:   {"endpoint_index": "0"}
	Payload map[string]string `json:"payload"`

	Status      TaskStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	Error       string     `json:"error,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ScheduledFor time.Time  `json:"scheduled_for"`
}

// NewTask creates a new task with default values
func NewTask(taskType TaskType, payload map[string]string) *Task {
	now := time.Now()
	return &Task{
		ID:           GenerateID(),
		Type:         taskType,
		Payload:      payload,
		Status:       TaskStatusPending,
		Attempts:     0,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewSyncStoreTask creates a task to sync one store's endpoint
func NewSyncStoreTask(storeID string, endpointIndex int, forceRefresh bool) *Task {
	return NewTask(TaskTypeSyncStore, map[string]string{
		"store_id":       storeID,
		"endpoint_index": strconv.Itoa(endpointIndex),
		"force_refresh":  strconv.FormatBool(forceRefresh),
	})
}

// NewSyncAllTask creates a task to sync every store at the given endpoint index
func NewSyncAllTask(endpointIndex int) *Task {
	return NewTask(TaskTypeSyncAll, map[string]string{
		"endpoint_index": strconv.Itoa(endpointIndex),
	})
}

// StoreID extracts the store_id from the payload (for sync_store tasks)
func (t *Task) StoreID() string {
	if t.Payload == nil {
		return ""
	}
	return t.Payload["store_id"]
}

// EndpointIndex extracts the endpoint index from the payload, defaulting to 0.
func (t *Task) EndpointIndex() int {
	if t.Payload == nil {
		return 0
	}
	n, err := strconv.Atoi(t.Payload["endpoint_index"])
	if err != nil {
		return 0
	}
	return n
}

// ForceRefresh extracts the force_refresh flag from the payload.
func (t *Task) ForceRefresh() bool {
	if t.Payload == nil {
		return false
	}
	return t.Payload["force_refresh"] == "true"
}

// CanRetry returns true if the task can be retried
func (t *Task) CanRetry() bool {
	return t.Attempts < t.MaxAttempts
}

// IsReady returns true if the task is ready to be processed
func (t *Task) IsReady() bool {
	return t.Status == TaskStatusPending && time.Now().After(t.ScheduledFor)
}

// MarkProcessing updates the task to processing state
func (t *Task) MarkProcessing() {
	now := time.Now()
	t.Status = TaskStatusProcessing
	t.StartedAt = &now
	t.UpdatedAt = now
	t.Attempts++
}

// MarkCompleted updates the task to completed state
func (t *Task) MarkCompleted() {
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.Error = ""
}

// MarkFailed updates the task to failed state
func (t *Task) MarkFailed(err string) {
	now := time.Now()
	t.Status = TaskStatusFailed
	t.UpdatedAt = now
	t.Error = err
}

// Retry resets the task for retry with exponential backoff
func (t *Task) Retry(err string) {
	now := time.Now()
	t.Status = TaskStatusPending
	t.UpdatedAt = now
	t.Error = err

	// Exponential backoff: 1s, 2s, 4s, 8s, etc.
	backoff := time.Duration(1<<t.Attempts) * time.Second
	if backoff > 5*time.Minute {
		backoff = 5 * time.Minute
	}
	t.ScheduledFor = now.Add(backoff)
}

// ScheduledSync is a recurring sync configuration.
type ScheduledSync struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Type          TaskType      `json:"type"`
	StoreID       string        `json:"store_id,omitempty"` // empty for sync_all
	EndpointIndex int           `json:"endpoint_index"`
	Interval      time.Duration `json:"interval"`
	Enabled       bool          `json:"enabled"`
	LastRun       *time.Time    `json:"last_run,omitempty"`
	NextRun       time.Time     `json:"next_run"`
	LastError     string        `json:"last_error,omitempty"`
}

// NewScheduledSync creates an enabled recurring sync.
func NewScheduledSync(id, name string, taskType TaskType, endpointIndex int, interval time.Duration) *ScheduledSync {
	return &ScheduledSync{
		ID:            id,
		Name:          name,
		Type:          taskType,
		EndpointIndex: endpointIndex,
		Interval:      interval,
		Enabled:       true,
		NextRun:       time.Now().Add(interval),
	}
}

// IsDue returns true if the scheduled sync should be triggered
func (s *ScheduledSync) IsDue() bool {
	return s.Enabled && time.Now().After(s.NextRun)
}

// UpdateNextRun advances the schedule after a trigger.
func (s *ScheduledSync) UpdateNextRun() {
	now := time.Now()
	s.LastRun = &now
	s.NextRun = now.Add(s.Interval)
}
