package driven

import (
	"context"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// ProductRepository persists canonical products. The reconciler only talks
// to this contract; it never reaches into the backing collections directly.
type ProductRepository interface {
	// FindActiveByIdentity looks up an active product by its identity key.
	// Returns nil, domain.ErrNotFound when no active product matches.
	FindActiveByIdentity(ctx context.Context, id domain.ProductIdentity) (*domain.Product, error)

	// Insert stores a new product and returns it with its assigned ID.
	Insert(ctx context.Context, product *domain.Product) (*domain.Product, error)

	// UpdateFields applies only the given fields to an existing product.
	// Keys are canonical field names (price, discount_price, currency,
	// description, images, colors, sizes, updated_at).
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*domain.Product, error)

	// Deactivate soft-deletes a product (is_active=false).
	Deactivate(ctx context.Context, id string) error
}
