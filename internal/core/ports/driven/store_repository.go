package driven

import (
	"context"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// StoreRepository provides access to store and endpoint descriptors.
// Endpoint descriptors are read-only to the sync core.
type StoreRepository interface {
	// FindByID retrieves a store with its endpoints fully hydrated.
	// Returns domain.ErrStoreNotFound if absent.
	FindByID(ctx context.Context, id string) (*domain.Store, error)

	// FindWithEndpointAt retrieves every enabled store exposing an
	// endpoint at the given index.
	FindWithEndpointAt(ctx context.Context, index int) ([]*domain.Store, error)

	// Save creates or updates a store.
	Save(ctx context.Context, store *domain.Store) error

	// List retrieves all stores.
	List(ctx context.Context) ([]*domain.Store, error)
}
