package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tag labels a product ("Gaming", "RGB", ...). Products carry a tag set.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ProductImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Product is the store-side view of a catalog product. Reviews and Rating
// are aggregates the store computes from review rows; the rest of the
// application consumes them as plain fields and never recomputes them.
type Product struct {
	ID           int
	Title        string
	CategoryID   int
	Price        decimal.Decimal
	SalePrice    *decimal.Decimal
	SaleFrom     *time.Time
	SaleTo       *time.Time
	Count        int
	FreeDelivery bool
	Description  string
	Date         time.Time
	Tags         []Tag
	Images       []ProductImage
	Reviews      int
	Rating       float64

	SortIndex      int
	PurchasesCount int
	Limited        bool
	Banner         bool
	Archived       bool
}

// EffectivePrice returns the sale price while a sale override is active,
// otherwise the base price.
func (p Product) EffectivePrice() decimal.Decimal {
	return p.EffectivePriceAt(time.Now().UTC())
}

func (p Product) EffectivePriceAt(now time.Time) decimal.Decimal {
	if p.SalePrice == nil {
		return p.Price
	}
	if p.SaleFrom != nil && now.Before(*p.SaleFrom) {
		return p.Price
	}
	if p.SaleTo != nil && now.After(*p.SaleTo) {
		return p.Price
	}
	return *p.SalePrice
}

// HasAnyTag reports whether the product carries at least one of the given
// tag ids.
func (p Product) HasAnyTag(tagIDs []int) bool {
	for _, want := range tagIDs {
		for _, tag := range p.Tags {
			if tag.ID == want {
				return true
			}
		}
	}
	return false
}

// Item is the catalog-facing product projection returned by the API.
type Item struct {
	ID           int             `json:"id"`
	Category     int             `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Count        int             `json:"count"`
	Date         string          `json:"date"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	FreeDelivery bool            `json:"freeDelivery"`
	Images       []ProductImage  `json:"images"`
	Tags         []Tag           `json:"tags"`
	Reviews      int             `json:"reviews"`
	Rating       float64         `json:"rating"`
}

// Item builds the API projection for the product. The price is the
// effective one so active sales are visible in listings.
func (p Product) Item() Item {
	images := p.Images
	if images == nil {
		images = []ProductImage{}
	}
	tags := p.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return Item{
		ID:           p.ID,
		Category:     p.CategoryID,
		Price:        p.EffectivePrice(),
		Count:        p.Count,
		Date:         p.Date.UTC().Format(time.RFC3339),
		Title:        p.Title,
		Description:  p.Description,
		FreeDelivery: p.FreeDelivery,
		Images:       images,
		Tags:         tags,
		Reviews:      p.Reviews,
		Rating:       p.Rating,
	}
}

func itemsOf(products []Product) []Item {
	out := make([]Item, 0, len(products))
	for _, p := range products {
		out = append(out, p.Item())
	}
	return out
}
