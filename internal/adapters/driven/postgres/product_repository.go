package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
	"github.com/vendora-labs/catalog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements driven.ProductRepository using PostgreSQL.
// Images and colors use native text arrays; sizes are JSONB.
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, brand, price, discount_price, currency, description,
	images, colors, sizes, store_id, category_id, is_active, created_at, updated_at`

// FindActiveByIdentity looks up an active product by its identity key
func (r *ProductRepository) FindActiveByIdentity(ctx context.Context, id domain.ProductIdentity) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE name = $1 AND brand = $2 AND store_id = $3 AND category_id = $4 AND is_active = true
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id.Name, id.Brand, id.StoreID, id.Category))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product by identity: %w", err)
	}
	return product, nil
}

// Insert stores a new product and returns it with its assigned ID
func (r *ProductRepository) Insert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	cp := *product
	if cp.ID == "" {
		cp.ID = domain.GenerateID()
	}

	sizesJSON, err := json.Marshal(cp.Sizes)
	if err != nil {
		return nil, fmt.Errorf("marshal sizes: %w", err)
	}

	query := `
		INSERT INTO products (id, name, brand, price, discount_price, currency, description,
			images, colors, sizes, store_id, category_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(ctx, query,
		cp.ID,
		cp.Name,
		cp.Brand,
		cp.Price,
		cp.DiscountPrice,
		cp.Currency,
		cp.Description,
		pq.Array(cp.Images),
		pq.Array(cp.Colors),
		sizesJSON,
		cp.StoreID,
		cp.CategoryID,
		cp.IsActive,
		cp.CreatedAt,
		cp.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &cp, nil
}

// updatableColumns maps field names accepted by UpdateFields onto their
// columns. Anything else is rejected to keep the reconciler's field
// names and the schema in lockstep.
var updatableColumns = map[string]string{
	"price":          "price",
	"discount_price": "discount_price",
	"currency":       "currency",
	"description":    "description",
	"images":         "images",
	"colors":         "colors",
	"sizes":          "sizes",
	"is_active":      "is_active",
	"updated_at":     "updated_at",
}

// UpdateFields applies only the given fields to an existing product
func (r *ProductRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*domain.Product, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("update product %s: %w: no fields", id, domain.ErrInvalidInput)
	}

	setClauses := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields)+1)
	i := 1
	for name, value := range fields {
		column, ok := updatableColumns[name]
		if !ok {
			return nil, fmt.Errorf("update product %s: %w: unknown field %q", id, domain.ErrInvalidInput, name)
		}
		switch name {
		case "images", "colors":
			value = pq.Array(value)
		case "sizes":
			data, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("marshal sizes: %w", err)
			}
			value = data
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, i))
		args = append(args, value)
		i++
	}
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE products SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), i, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return product, nil
}

// Deactivate soft-deletes a product
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = false, updated_at = $2 WHERE id = $1`,
		id, time.Now())
	if err != nil {
		return fmt.Errorf("deactivate product %s: %w", id, err)
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

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var sizesJSON []byte

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Price,
		&p.DiscountPrice,
		&p.Currency,
		&p.Description,
		pq.Array(&p.Images),
		pq.Array(&p.Colors),
		&sizesJSON,
		&p.StoreID,
		&p.CategoryID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(sizesJSON, &p.Sizes); err != nil {
		return nil, fmt.Errorf("unmarshal sizes: %w", err)
	}
	return &p, nil
}
