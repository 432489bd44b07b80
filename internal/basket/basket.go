package basket

import "github.com/megano-shop/backend/internal/catalog"

// Line is one stored basket position: a product and its quantity. There
// is exactly one line per (user, product); repeated adds merge into it.
type Line struct {
	ProductID int
	Count     int
}

// Item is the API shape of a basket position. It reuses the catalog
// projection; Count carries the basket quantity instead of the stock
// count and Price is the effective (sale-aware) price.
type Item = catalog.Item
