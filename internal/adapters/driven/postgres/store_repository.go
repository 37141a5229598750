package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.StoreRepository = (*StoreRepository)(nil)

// StoreRepository implements driven.StoreRepository using PostgreSQL.
// Endpoint lists are stored as JSONB; credentials are encrypted at rest
// when an encryptor is configured.
type StoreRepository struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewStoreRepository creates a new StoreRepository. The encryptor is
// optional; without it credentials are not persisted.
func NewStoreRepository(db *DB, encryptor *SecretEncryptor) *StoreRepository {
	return &StoreRepository{db: db, encryptor: encryptor}
}

// FindByID retrieves a store with its endpoints fully hydrated
func (s *StoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	query := `
		SELECT id, name, endpoints, enabled, credential, created_at, updated_at
		FROM stores
		WHERE id = $1
	`

	store, err := s.scanStore(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find store %s: %w", id, err)
	}
	return store, nil
}

// FindWithEndpointAt retrieves every enabled store exposing an endpoint
// at the given index. Ordering is stable so bulk syncs are deterministic.
func (s *StoreRepository) FindWithEndpointAt(ctx context.Context, index int) ([]*domain.Store, error) {
	query := `
		SELECT id, name, endpoints, enabled, credential, created_at, updated_at
		FROM stores
		WHERE enabled = true AND jsonb_array_length(endpoints) > $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, index)
	if err != nil {
		return nil, fmt.Errorf("list stores with endpoint %d: %w", index, err)
	}
	defer rows.Close()

	var stores []*domain.Store
	for rows.Next() {
		store, err := s.scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

// Save creates or updates a store
func (s *StoreRepository) Save(ctx context.Context, store *domain.Store) error {
	endpointsJSON, err := json.Marshal(store.Endpoints)
	if err != nil {
		return fmt.Errorf("marshal endpoints: %w", err)
	}

	var credential []byte
	if store.Credential != "" && s.encryptor != nil {
		credential, err = s.encryptor.EncryptString(store.Credential)
		if err != nil {
			return fmt.Errorf("encrypt credential: %w", err)
		}
	}

	query := `
		INSERT INTO stores (id, name, endpoints, enabled, credential, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			endpoints = EXCLUDED.endpoints,
			enabled = EXCLUDED.enabled,
			credential = EXCLUDED.credential,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		store.ID,
		store.Name,
		endpointsJSON,
		store.Enabled,
		credential,
		store.CreatedAt,
		store.UpdatedAt,
	)
	return err
}

// List retrieves all stores
func (s *StoreRepository) List(ctx context.Context) ([]*domain.Store, error) {
	query := `
		SELECT id, name, endpoints, enabled, credential, created_at, updated_at
		FROM stores
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []*domain.Store
	for rows.Next() {
		store, err := s.scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *StoreRepository) scanStore(row rowScanner) (*domain.Store, error) {
	var store domain.Store
	var endpointsJSON []byte
	var credential []byte

	err := row.Scan(
		&store.ID,
		&store.Name,
		&endpointsJSON,
		&store.Enabled,
		&credential,
		&store.CreatedAt,
		&store.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(endpointsJSON, &store.Endpoints); err != nil {
		return nil, fmt.Errorf("unmarshal endpoints: %w", err)
	}

	if len(credential) > 0 && s.encryptor != nil {
		plain, err := s.encryptor.DecryptString(credential)
		if err != nil {
			return nil, fmt.Errorf("decrypt credential for store %s: %w", store.ID, err)
		}
		store.Credential = plain
	}

	return &store, nil
}
