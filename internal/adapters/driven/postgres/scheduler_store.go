package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore implements driven.SchedulerStore using PostgreSQL
type SchedulerStore struct {
	db *DB
}

// NewSchedulerStore creates a new SchedulerStore
func NewSchedulerStore(db *DB) *SchedulerStore {
	return &SchedulerStore{db: db}
}

const scheduledSyncColumns = `id, name, type, store_id, endpoint_index, interval_ns, enabled, next_run, last_run, last_error`

// GetScheduledSync retrieves a scheduled sync by ID
func (s *SchedulerStore) GetScheduledSync(ctx context.Context, id string) (*domain.ScheduledSync, error) {
	query := fmt.Sprintf(`SELECT %s FROM scheduled_syncs WHERE id = $1`, scheduledSyncColumns)

	scheduled, err := scanScheduledSync(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scheduled sync %s: %w", id, err)
	}
	return scheduled, nil
}

// ListScheduledSyncs retrieves all scheduled syncs
func (s *SchedulerStore) ListScheduledSyncs(ctx context.Context) ([]*domain.ScheduledSync, error) {
	query := fmt.Sprintf(`SELECT %s FROM scheduled_syncs ORDER BY next_run ASC`, scheduledSyncColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list scheduled syncs: %w", err)
	}
	defer rows.Close()

	return scanScheduledSyncs(rows)
}

// SaveScheduledSync creates or updates a scheduled sync
func (s *SchedulerStore) SaveScheduledSync(ctx context.Context, scheduled *domain.ScheduledSync) error {
	query := `
		INSERT INTO scheduled_syncs (id, name, type, store_id, endpoint_index, interval_ns, enabled, next_run, last_run, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			store_id = EXCLUDED.store_id,
			endpoint_index = EXCLUDED.endpoint_index,
			interval_ns = EXCLUDED.interval_ns,
			enabled = EXCLUDED.enabled,
			next_run = EXCLUDED.next_run,
			last_run = EXCLUDED.last_run,
			last_error = EXCLUDED.last_error
	`

	_, err := s.db.ExecContext(ctx, query,
		scheduled.ID,
		scheduled.Name,
		string(scheduled.Type),
		scheduled.StoreID,
		scheduled.EndpointIndex,
		int64(scheduled.Interval),
		scheduled.Enabled,
		scheduled.NextRun,
		NullTime(scheduled.LastRun),
		scheduled.LastError,
	)
	return err
}

// DeleteScheduledSync removes a scheduled sync
func (s *SchedulerStore) DeleteScheduledSync(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_syncs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scheduled sync %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDueScheduledSyncs retrieves scheduled syncs that are due to run
func (s *SchedulerStore) GetDueScheduledSyncs(ctx context.Context) ([]*domain.ScheduledSync, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scheduled_syncs
		WHERE enabled = true AND next_run <= NOW()
		ORDER BY next_run ASC
	`, scheduledSyncColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get due scheduled syncs: %w", err)
	}
	defer rows.Close()

	return scanScheduledSyncs(rows)
}

// UpdateLastRun updates the last run time and advances the next run
func (s *SchedulerStore) UpdateLastRun(ctx context.Context, id string, lastError string) error {
	now := time.Now()
	var query string
	if lastError == "" {
		query = `
			UPDATE scheduled_syncs
			SET last_run = $2, next_run = $2 + (interval_ns * interval '1 nanosecond'), last_error = ''
			WHERE id = $1
		`
	} else {
		query = `
			UPDATE scheduled_syncs
			SET last_run = $2, last_error = $3
			WHERE id = $1
		`
	}

	var result sql.Result
	var err error
	if lastError == "" {
		result, err = s.db.ExecContext(ctx, query, id, now)
	} else {
		result, err = s.db.ExecContext(ctx, query, id, now, lastError)
	}
	if err != nil {
		return fmt.Errorf("update last run for %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanScheduledSync(row rowScanner) (*domain.ScheduledSync, error) {
	var scheduled domain.ScheduledSync
	var taskType string
	var intervalNs int64
	var lastRun sql.NullTime

	err := row.Scan(
		&scheduled.ID,
		&scheduled.Name,
		&taskType,
		&scheduled.StoreID,
		&scheduled.EndpointIndex,
		&intervalNs,
		&scheduled.Enabled,
		&scheduled.NextRun,
		&lastRun,
		&scheduled.LastError,
	)
	if err != nil {
		return nil, err
	}

	scheduled.Type = domain.TaskType(taskType)
	scheduled.Interval = time.Duration(intervalNs)
	scheduled.LastRun = TimePtr(lastRun)
	return &scheduled, nil
}

func scanScheduledSyncs(rows *sql.Rows) ([]*domain.ScheduledSync, error) {
	var result []*domain.ScheduledSync
	for rows.Next() {
		scheduled, err := scanScheduledSync(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, scheduled)
	}
	return result, rows.Err()
}
