package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// MockSchedulerStore is an in-memory SchedulerStore for testing.
type MockSchedulerStore struct {
	GetDueScheduledSyncsFn func(ctx context.Context) ([]*domain.ScheduledSync, error)

	mu        sync.Mutex
	schedules map[string]*domain.ScheduledSync
}

func NewMockSchedulerStore() *MockSchedulerStore {
	return &MockSchedulerStore{schedules: make(map[string]*domain.ScheduledSync)}
}

func (m *MockSchedulerStore) GetScheduledSync(ctx context.Context, id string) (*domain.ScheduledSync, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *MockSchedulerStore) ListScheduledSyncs(ctx context.Context) ([]*domain.ScheduledSync, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.ScheduledSync
	for _, s := range m.schedules {
		result = append(result, s)
	}
	return result, nil
}

func (m *MockSchedulerStore) SaveScheduledSync(ctx context.Context, s *domain.ScheduledSync) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.ID] = s
	return nil
}

func (m *MockSchedulerStore) DeleteScheduledSync(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *MockSchedulerStore) GetDueScheduledSyncs(ctx context.Context) ([]*domain.ScheduledSync, error) {
	if m.GetDueScheduledSyncsFn != nil {
		return m.GetDueScheduledSyncsFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*domain.ScheduledSync
	for _, s := range m.schedules {
		if s.IsDue() {
			due = append(due, s)
		}
	}
	return due, nil
}

func (m *MockSchedulerStore) UpdateLastRun(ctx context.Context, id string, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastError = lastError
	if lastError == "" {
		s.UpdateNextRun()
	}
	return nil
}

// MockDistributedLock is a single-process DistributedLock for testing.
type MockDistributedLock struct {
	AcquireFn func(ctx context.Context, name string, ttl time.Duration) (bool, error)

	mu   sync.Mutex
	held map[string]bool
}

func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{held: make(map[string]bool)}
}

func (m *MockDistributedLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if m.AcquireFn != nil {
		return m.AcquireFn(ctx, name, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[name] {
		return false, nil
	}
	m.held[name] = true
	return true, nil
}

func (m *MockDistributedLock) Release(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, name)
	return nil
}

func (m *MockDistributedLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	return nil
}

func (m *MockDistributedLock) Ping(ctx context.Context) error { return nil }
