package mocks

import (
	"context"
	"sync"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// MockStoreRepository is an in-memory StoreRepository for testing.
// Function fields override individual methods when set.
type MockStoreRepository struct {
	FindByIDFn           func(ctx context.Context, id string) (*domain.Store, error)
	FindWithEndpointAtFn func(ctx context.Context, index int) ([]*domain.Store, error)

	mu     sync.Mutex
	stores map[string]*domain.Store
	order  []string
}

func NewMockStoreRepository() *MockStoreRepository {
	return &MockStoreRepository{stores: make(map[string]*domain.Store)}
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id string) (*domain.Store, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[id]
	if !ok {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

func (m *MockStoreRepository) FindWithEndpointAt(ctx context.Context, index int) ([]*domain.Store, error) {
	if m.FindWithEndpointAtFn != nil {
		return m.FindWithEndpointAtFn(ctx, index)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Store
	for _, id := range m.order {
		store := m.stores[id]
		if store.Enabled && store.HasEndpointAt(index) {
			result = append(result, store)
		}
	}
	return result, nil
}

func (m *MockStoreRepository) Save(ctx context.Context, store *domain.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[store.ID]; !ok {
		m.order = append(m.order, store.ID)
	}
	m.stores[store.ID] = store
	return nil
}

func (m *MockStoreRepository) List(ctx context.Context) ([]*domain.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Store
	for _, id := range m.order {
		result = append(result, m.stores[id])
	}
	return result, nil
}
