package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// MockProductRepository is an in-memory ProductRepository for testing.
// Function fields override individual methods when set.
type MockProductRepository struct {
	FindActiveByIdentityFn func(ctx context.Context, id domain.ProductIdentity) (*domain.Product, error)
	InsertFn               func(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateFieldsFn         func(ctx context.Context, id string, fields map[string]interface{}) (*domain.Product, error)

	mu       sync.Mutex
	products map[string]*domain.Product
	nextID   int

	// UpdateCalls records the field maps passed to UpdateFields, in order.
	UpdateCalls []map[string]interface{}
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[string]*domain.Product)}
}

func (m *MockProductRepository) FindActiveByIdentity(ctx context.Context, id domain.ProductIdentity) (*domain.Product, error) {
	if m.FindActiveByIdentityFn != nil {
		return m.FindActiveByIdentityFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.IsActive && p.Identity() == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockProductRepository) Insert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if m.InsertFn != nil {
		return m.InsertFn(ctx, product)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *product
	if cp.ID == "" {
		cp.ID = fmt.Sprintf("product-%d", m.nextID)
	}
	m.products[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *MockProductRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*domain.Product, error) {
	if m.UpdateFieldsFn != nil {
		return m.UpdateFieldsFn(ctx, id, fields)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m.UpdateCalls = append(m.UpdateCalls, fields)
	for name, value := range fields {
		switch name {
		case "price":
			p.Price = value.(float64)
		case "discount_price":
			p.DiscountPrice = value.(float64)
		case "currency":
			p.Currency = value.(string)
		case "description":
			p.Description = value.(string)
		case "images":
			p.Images = value.([]string)
		case "colors":
			p.Colors = value.([]string)
		case "sizes":
			p.Sizes = value.([]domain.Size)
		case "is_active":
			p.IsActive = value.(bool)
		case "updated_at":
			p.UpdatedAt = value.(time.Time)
		}
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductRepository) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.IsActive = false
	return nil
}

// Get returns a stored product by ID (test helper).
func (m *MockProductRepository) Get(id string) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// Count returns the number of stored products (test helper).
func (m *MockProductRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}
