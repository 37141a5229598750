package domain

import "time"

// RawProduct is an upstream record before normalization. Field names and
// shapes vary per source; treat as untrusted input.
type RawProduct map[string]interface{}

// Size pairs a size label with its stock state.
type Size struct {
	Name    string `json:"name"`
	OnStock bool   `json:"on_stock"`
}

// Product is the canonical normalized product entity.
// Identity is the (Name, Brand, StoreID, CategoryID) tuple; it must be
// unique among active products.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Price         float64   `json:"price"`
	DiscountPrice float64   `json:"discount_price,omitempty"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description,omitempty"`
	Images        []string  `json:"images"`
	Colors        []string  `json:"colors"`
	Sizes         []Size    `json:"sizes"`
	StoreID       string    `json:"store_id"`
	CategoryID    string    `json:"category_id"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Identity returns the tuple deciding create-vs-update during reconciliation.
func (p *Product) Identity() ProductIdentity {
	return ProductIdentity{
		Name:     p.Name,
		Brand:    p.Brand,
		StoreID:  p.StoreID,
		Category: p.CategoryID,
	}
}

// ProductIdentity is the lookup key for reconciliation.
type ProductIdentity struct {
	Name     string
	Brand    string
	StoreID  string
	Category string
}

// SizesEqual compares two size lists structurally, order-sensitive.
func SizesEqual(a, b []Size) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// StringsEqual compares two string slices structurally, order-sensitive.
func StringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
