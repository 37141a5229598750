package domain

import "time"

// SyncStatus represents the current state of a sync run
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncStats holds per-run outcome counters.
type SyncStats struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"` // unchanged duplicates, not written
	Failed  int `json:"failed"`
}

// Add folds another stats value into this one. Counts are commutative, so
// merging per-store partials into a bulk total is order-independent.
func (s *SyncStats) Add(other SyncStats) {
	s.Fetched += other.Fetched
	s.Created += other.Created
	s.Updated += other.Updated
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// ErrorRecord is one classified failure appended to a run's error log.
// The log is the only durable trace of transient failures.
type ErrorRecord struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Attempt   int       `json:"attempt"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncRunSummary is the outcome of syncing one store's endpoint once.
type SyncRunSummary struct {
	RunID         string        `json:"run_id"`
	StoreID       string        `json:"store_id"`
	EndpointIndex int           `json:"endpoint_index"`
	Status        SyncStatus    `json:"status"`
	Stats         SyncStats     `json:"stats"`
	Errors        []ErrorRecord `json:"errors,omitempty"`
	Error         string        `json:"error,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   time.Time     `json:"completed_at"`
}

// RecordError appends a classified failure to the run's error log.
func (r *SyncRunSummary) RecordError(rec ErrorRecord) {
	r.Errors = append(r.Errors, rec)
}

// BulkSyncSummary aggregates the runs of a multi-store sync invocation.
// It is always returned, never thrown: every failure is data.
type BulkSyncSummary struct {
	TotalStores      int               `json:"total_stores"`
	SuccessfulStores int               `json:"successful_stores"`
	FailedStores     int               `json:"failed_stores"`
	Totals           SyncStats         `json:"totals"`
	Runs             []*SyncRunSummary `json:"runs"`
	StartedAt        time.Time         `json:"started_at"`
	CompletedAt      time.Time         `json:"completed_at"`
}
