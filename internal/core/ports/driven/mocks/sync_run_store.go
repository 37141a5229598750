package mocks

import (
	"context"
	"sync"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// MockSyncRunStore is an in-memory SyncRunStore for testing.
type MockSyncRunStore struct {
	SaveFn func(ctx context.Context, run *domain.SyncRunSummary) error

	mu   sync.Mutex
	runs map[string]*domain.SyncRunSummary
}

func NewMockSyncRunStore() *MockSyncRunStore {
	return &MockSyncRunStore{runs: make(map[string]*domain.SyncRunSummary)}
}

func (m *MockSyncRunStore) Save(ctx context.Context, run *domain.SyncRunSummary) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, run)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	m.runs[run.RunID] = &cp
	return nil
}

func (m *MockSyncRunStore) Get(ctx context.Context, runID string) (*domain.SyncRunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (m *MockSyncRunStore) ListByStore(ctx context.Context, storeID string, limit int) ([]*domain.SyncRunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.SyncRunSummary
	for _, run := range m.runs {
		if run.StoreID == storeID {
			cp := *run
			result = append(result, &cp)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockSyncRunStore) MarkFailed(ctx context.Context, runID string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return domain.ErrNotFound
	}
	run.Status = domain.SyncStatusFailed
	run.Error = message
	return nil
}
