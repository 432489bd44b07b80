package catalog

import "github.com/megano-shop/backend/internal/apperr"

const (
	DefaultPageSize = 20
	DefaultPage     = 1
)

// Page is one slice of an ordered listing plus its pagination metadata.
type Page struct {
	Items       []Item `json:"items"`
	CurrentPage int    `json:"currentPage"`
	LastPage    int    `json:"lastPage"`
}

// Paginate slices products into the 1-indexed page of the given size.
// A page past the end yields an empty items list, not an error; a
// non-positive size or page is rejected as invalid input.
func Paginate(products []Product, size, page int) (Page, error) {
	if size <= 0 {
		return Page{}, apperr.Validation("limit", "limit must be a positive integer")
	}
	if page <= 0 {
		return Page{}, apperr.Validation("currentPage", "currentPage must be a positive integer")
	}

	total := len(products)
	lastPage := (total + size - 1) / size

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:       itemsOf(products[start:end]),
		CurrentPage: page,
		LastPage:    lastPage,
	}, nil
}
