package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMaxPrice is the sentinel upper bound: a filter carrying this value
// (or no value at all) applies no maximum-price clause.
var DefaultMaxPrice = decimal.NewFromInt(50000)

// FilterConfig holds the optional catalog query criteria. Every present
// option narrows the result (AND semantics); options left at their
// defaults are no-ops.
type FilterConfig struct {
	Name         string
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	Available    bool
	FreeDelivery bool
	TagIDs       []int
	CategoryID   int
}

// DefaultFilter returns a configuration that matches every product.
func DefaultFilter() FilterConfig {
	return FilterConfig{MaxPrice: DefaultMaxPrice}
}

type predicate func(Product) bool

// clauses compiles the active options into independent predicate clauses.
// The clauses are order-insensitive, so the compilation order carries no
// meaning.
func (f FilterConfig) clauses() []predicate {
	var out []predicate
	if f.Name != "" {
		name := strings.ToLower(f.Name)
		out = append(out, func(p Product) bool {
			return strings.Contains(strings.ToLower(p.Title), name)
		})
	}
	if f.MinPrice.IsPositive() {
		min := f.MinPrice
		out = append(out, func(p Product) bool {
			return p.Price.GreaterThanOrEqual(min)
		})
	}
	if f.MaxPrice.IsPositive() && !f.MaxPrice.Equal(DefaultMaxPrice) {
		max := f.MaxPrice
		out = append(out, func(p Product) bool {
			return p.Price.LessThanOrEqual(max)
		})
	}
	if f.Available {
		out = append(out, func(p Product) bool { return p.Count > 0 })
	}
	if f.FreeDelivery {
		out = append(out, func(p Product) bool { return p.FreeDelivery })
	}
	if len(f.TagIDs) > 0 {
		tagIDs := f.TagIDs
		out = append(out, func(p Product) bool { return p.HasAnyTag(tagIDs) })
	}
	if f.CategoryID > 0 {
		catID := f.CategoryID
		out = append(out, func(p Product) bool { return p.CategoryID == catID })
	}
	return out
}

// Matches reports whether p passes every active clause.
func (f FilterConfig) Matches(p Product) bool {
	for _, clause := range f.clauses() {
		if !clause(p) {
			return false
		}
	}
	return true
}

// Apply returns the products matching the filter, preserving input order.
// Each product appears at most once regardless of how many requested tags
// it matches.
func (f FilterConfig) Apply(products []Product) []Product {
	clauses := f.clauses()
	out := make([]Product, 0, len(products))
next:
	for _, p := range products {
		for _, clause := range clauses {
			if !clause(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}
