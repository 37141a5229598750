package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SyncRunStore = (*SyncRunStore)(nil)

// SyncRunStore implements driven.SyncRunStore using PostgreSQL. The
// error log rides along as JSONB; it is the durable trace of transient
// failures.
type SyncRunStore struct {
	db *DB
}

// NewSyncRunStore creates a new SyncRunStore
func NewSyncRunStore(db *DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

// Save creates or updates a run summary
func (s *SyncRunStore) Save(ctx context.Context, run *domain.SyncRunSummary) error {
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	var completedAt sql.NullTime
	if !run.CompletedAt.IsZero() {
		completedAt = sql.NullTime{Time: run.CompletedAt, Valid: true}
	}

	query := `
		INSERT INTO sync_runs (run_id, store_id, endpoint_index, status, stats, errors, error, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO UPDATE SET
			status = EXCLUDED.status,
			stats = EXCLUDED.stats,
			errors = EXCLUDED.errors,
			error = EXCLUDED.error,
			completed_at = EXCLUDED.completed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		run.RunID,
		run.StoreID,
		run.EndpointIndex,
		string(run.Status),
		statsJSON,
		errorsJSON,
		run.Error,
		run.StartedAt,
		completedAt,
	)
	return err
}

// Get retrieves a run by ID
func (s *SyncRunStore) Get(ctx context.Context, runID string) (*domain.SyncRunSummary, error) {
	query := `
		SELECT run_id, store_id, endpoint_index, status, stats, errors, error, started_at, completed_at
		FROM sync_runs
		WHERE run_id = $1
	`

	run, err := scanSyncRun(s.db.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return run, nil
}

// ListByStore retrieves the most recent runs for a store, newest first
func (s *SyncRunStore) ListByStore(ctx context.Context, storeID string, limit int) ([]*domain.SyncRunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT run_id, store_id, endpoint_index, status, stats, errors, error, started_at, completed_at
		FROM sync_runs
		WHERE store_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs for store %s: %w", storeID, err)
	}
	defer rows.Close()

	var runs []*domain.SyncRunSummary
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// MarkFailed marks a run terminally failed with the given message
func (s *SyncRunStore) MarkFailed(ctx context.Context, runID string, message string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = $2, error = $3, completed_at = $4 WHERE run_id = $1`,
		runID, string(domain.SyncStatusFailed), message, time.Now())
	if err != nil {
		return fmt.Errorf("mark run %s failed: %w", runID, err)
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

func scanSyncRun(row rowScanner) (*domain.SyncRunSummary, error) {
	var run domain.SyncRunSummary
	var status string
	var statsJSON, errorsJSON []byte
	var completedAt sql.NullTime

	err := row.Scan(
		&run.RunID,
		&run.StoreID,
		&run.EndpointIndex,
		&status,
		&statsJSON,
		&errorsJSON,
		&run.Error,
		&run.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = domain.SyncStatus(status)
	if err := json.Unmarshal(statsJSON, &run.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
		return nil, fmt.Errorf("unmarshal errors: %w", err)
	}
	if completedAt.Valid {
		run.CompletedAt = completedAt.Time
	}
	return &run, nil
}
