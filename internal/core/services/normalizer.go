package services

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/vendora-labs/catalog-core/internal/core/domain"
)

// imageWidth is the pixel width substituted for {width} placeholder
// tokens in upstream image URLs.
const imageWidth = 480

// NormalizationFailure pairs a bad raw record's batch index with the
// reason it could not be normalized.
type NormalizationFailure struct {
	Index int
	Err   error
}

// NormalizeProduct converts a raw upstream record into the canonical
// product shape. Name, brand and price are required; everything else is
// coerced best-effort. The returned product carries no ID or timestamps;
// the reconciler owns those.
func NormalizeProduct(raw domain.RawProduct) (*domain.Product, error) {
	name := foldString(raw["name"])
	if name == "" {
		return nil, &domain.NormalizationError{Field: "name", Reason: "missing or empty", Err: domain.ErrMissingRequiredField}
	}
	brand := foldString(raw["brand"])
	if brand == "" {
		return nil, &domain.NormalizationError{Field: "brand", Reason: "missing or empty", Err: domain.ErrMissingRequiredField}
	}
	if _, ok := raw["price"]; !ok {
		return nil, &domain.NormalizationError{Field: "price", Reason: "missing", Err: domain.ErrMissingRequiredField}
	}

	p := &domain.Product{
		Name:          name,
		Brand:         brand,
		Price:         normalizePrice(raw["price"]),
		DiscountPrice: normalizePrice(firstPresent(raw, "discountPrice", "discount_price")),
		Currency:      strings.ToUpper(trimString(raw["currency"])),
		Description:   trimString(raw["description"]),
		Images:        normalizeImages(firstPresent(raw, "images", "imageUrl")),
		Colors:        normalizeColors(raw["colors"]),
		Sizes:         normalizeSizes(raw["sizes"]),
		StoreID:       foldString(firstPresent(raw, "store", "storeName")),
		CategoryID:    foldString(firstPresent(raw, "category", "categoryName")),
		IsActive:      true,
	}
	return p, nil
}

// NormalizeBatch normalizes every record independently. One bad record
// never fails the batch; failures come back alongside the successes.
func NormalizeBatch(raws []domain.RawProduct) ([]*domain.Product, []NormalizationFailure) {
	products := make([]*domain.Product, 0, len(raws))
	var failures []NormalizationFailure
	for i, raw := range raws {
		p, err := NormalizeProduct(raw)
		if err != nil {
			failures = append(failures, NormalizationFailure{Index: i, Err: err})
			continue
		}
		products = append(products, p)
	}
	return products, failures
}

// firstPresent returns the first of the aliased keys present in raw.
// Alias order is fixed; upstreams disagree on field names.
func firstPresent(raw domain.RawProduct, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v
		}
	}
	return nil
}

func trimString(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func foldString(v interface{}) string {
	return strings.ToLower(trimString(v))
}

// normalizePrice coerces an upstream price into a two-decimal float.
// Integral values of 100 and above are integer-encoded with the last
// two digits as the decimal part (29900 means 299.00); values below 100
// and non-integral values are taken literally. Invalid, empty or
// negative inputs normalize to 0.
func normalizePrice(v interface{}) float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= 100 && f == math.Trunc(f) {
		f = f / 100
	}
	return math.Round(f*100) / 100
}

// normalizeColors accepts plain strings or objects carrying a name-like
// field (name, then colorName). Unresolvable entries and the literal
// "Unknown" placeholder are dropped.
func normalizeColors(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var colors []string
	for _, item := range items {
		var name string
		switch val := item.(type) {
		case string:
			name = strings.TrimSpace(val)
		case map[string]interface{}:
			name = trimString(firstPresent(val, "name", "colorName"))
		}
		if name == "" || strings.EqualFold(name, "unknown") {
			continue
		}
		colors = append(colors, name)
	}
	return colors
}

// normalizeSizes accepts plain strings (implying in stock) or objects
// carrying a size-name field (name, then sizeName, then size) and an
// optional stock flag (onStock, then inStock). Stock defaults to true
// unless explicitly false.
func normalizeSizes(v interface{}) []domain.Size {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var sizes []domain.Size
	for _, item := range items {
		switch val := item.(type) {
		case string:
			name := strings.TrimSpace(val)
			if name != "" {
				sizes = append(sizes, domain.Size{Name: name, OnStock: true})
			}
		case map[string]interface{}:
			name := trimString(firstPresent(val, "name", "sizeName", "size"))
			if name == "" {
				continue
			}
			onStock := true
			if flag, ok := firstPresent(val, "onStock", "inStock").(bool); ok {
				onStock = flag
			}
			sizes = append(sizes, domain.Size{Name: name, OnStock: onStock})
		}
	}
	return sizes
}

// normalizeImages accepts a single URL string or a list. Non-string
// entries and entries failing URL validation are dropped; the {width}
// placeholder is substituted with the fixed pixel width.
func normalizeImages(v interface{}) []string {
	var candidates []string
	switch val := v.(type) {
	case string:
		candidates = []string{val}
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok {
				candidates = append(candidates, s)
			}
		}
	default:
		return nil
	}

	var images []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		c = strings.ReplaceAll(c, "{width}", strconv.Itoa(imageWidth))
		u, err := url.Parse(c)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			continue
		}
		images = append(images, c)
	}
	return images
}
