package catalog

import "sort"

// SortKey selects the field a catalog listing is ordered by.
type SortKey string

const (
	SortNone    SortKey = ""
	SortPrice   SortKey = "price"
	SortReviews SortKey = "reviews"
	SortDate    SortKey = "date"
	SortRating  SortKey = "rating"
)

// Direction uses the wire values the frontend sends.
type Direction string

const (
	Asc  Direction = "inc"
	Desc Direction = "dec"
)

// comparators orders ascending by a single key. No secondary key exists:
// the relative order of ties is whatever the store returned, which
// sort.SliceStable preserves.
var comparators = map[SortKey]func(a, b Product) int{
	SortPrice: func(a, b Product) int {
		return a.Price.Cmp(b.Price)
	},
	SortReviews: func(a, b Product) int {
		return a.Reviews - b.Reviews
	},
	SortDate: func(a, b Product) int {
		return a.Date.Compare(b.Date)
	},
	// a product with no reviews carries Rating 0 from the store, so it
	// participates in the order rather than being pushed out as null.
	SortRating: func(a, b Product) int {
		switch {
		case a.Rating < b.Rating:
			return -1
		case a.Rating > b.Rating:
			return 1
		default:
			return 0
		}
	},
}

// SortProducts orders products in place by key and direction. Unknown or
// empty keys leave the input order untouched.
func SortProducts(products []Product, key SortKey, dir Direction) {
	cmp, ok := comparators[key]
	if !ok {
		return
	}
	sort.SliceStable(products, func(i, j int) bool {
		c := cmp(products[i], products[j])
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
}
