package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// ReconcileAction is the outcome of reconciling one normalized product.
type ReconcileAction string

const (
	ReconcileCreated ReconcileAction = "created"
	ReconcileUpdated ReconcileAction = "updated"
	ReconcileSkipped ReconcileAction = "skipped"
)

// ReconcileResult pairs the action taken with the product as stored.
type ReconcileResult struct {
	Action  ReconcileAction
	Product *domain.Product
}

// Reconciler upserts normalized products by identity key. Unchanged
// duplicates are skipped without writing, so re-syncing identical
// upstream data causes no write amplification or timestamp churn.
type Reconciler struct {
	products driven.ProductRepository
	clock    driven.Clock
	logger   *slog.Logger
}

// ReconcilerConfig holds dependencies for Reconciler.
type ReconcilerConfig struct {
	Products driven.ProductRepository
	Clock    driven.Clock
	Logger   *slog.Logger
}

// NewReconciler creates a new product reconciler.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = driven.SystemClock{}
	}

	return &Reconciler{
		products: cfg.Products,
		clock:    clock,
		logger:   logger,
	}
}

// Reconcile looks up an active product by identity and decides create,
// update-if-changed, or skip-unchanged. Updates write only the fields
// that actually differ.
func (r *Reconciler) Reconcile(ctx context.Context, p *domain.Product) (*ReconcileResult, error) {
	existing, err := r.products.FindActiveByIdentity(ctx, p.Identity())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			now := r.clock.Now()
			p.IsActive = true
			p.CreatedAt = now
			p.UpdatedAt = now
			created, err := r.products.Insert(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("insert product: %w", err)
			}
			r.logger.Debug("product created",
				"name", created.Name, "brand", created.Brand, "store_id", created.StoreID)
			return &ReconcileResult{Action: ReconcileCreated, Product: created}, nil
		}
		return nil, fmt.Errorf("find product by identity: %w", err)
	}

	fields := diffFields(existing, p)
	if len(fields) == 0 {
		return &ReconcileResult{Action: ReconcileSkipped, Product: existing}, nil
	}

	fields["updated_at"] = r.clock.Now()
	updated, err := r.products.UpdateFields(ctx, existing.ID, fields)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", existing.ID, err)
	}
	r.logger.Debug("product updated",
		"id", existing.ID, "fields", len(fields)-1)
	return &ReconcileResult{Action: ReconcileUpdated, Product: updated}, nil
}

// diffFields computes the field-level diff between the stored product
// and the incoming one. List fields compare structurally.
func diffFields(existing, incoming *domain.Product) map[string]interface{} {
	fields := make(map[string]interface{})
	if existing.Price != incoming.Price {
		fields["price"] = incoming.Price
	}
	if existing.DiscountPrice != incoming.DiscountPrice {
		fields["discount_price"] = incoming.DiscountPrice
	}
	if existing.Currency != incoming.Currency {
		fields["currency"] = incoming.Currency
	}
	if existing.Description != incoming.Description {
		fields["description"] = incoming.Description
	}
	if !domain.StringsEqual(existing.Images, incoming.Images) {
		fields["images"] = incoming.Images
	}
	if !domain.StringsEqual(existing.Colors, incoming.Colors) {
		fields["colors"] = incoming.Colors
	}
	if !domain.SizesEqual(existing.Sizes, incoming.Sizes) {
		fields["sizes"] = incoming.Sizes
	}
	return fields
}
