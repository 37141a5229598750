package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// MockUpstreamClient is a mock UpstreamClient for testing.
type MockUpstreamClient struct {
	RequestFn func(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error)

	mu    sync.Mutex
	calls int
}

func NewMockUpstreamClient() *MockUpstreamClient {
	return &MockUpstreamClient{}
}

func (m *MockUpstreamClient) Request(ctx context.Context, url, method string, timeout time.Duration) (*driven.UpstreamResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.RequestFn != nil {
		return m.RequestFn(ctx, url, method, timeout)
	}
	return &driven.UpstreamResponse{Status: 200, Body: []byte("[]")}, nil
}

// Calls returns how many requests were issued (test helper).
func (m *MockUpstreamClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
