package catalog

import (
	"sort"
	"sync"

	"github.com/megano-shop/backend/internal/apperr"
)

// ErrNotFound aliases the shared sentinel so callers can match either.
var ErrNotFound = apperr.ErrNotFound

// Caps of the fixed derived views. Their ordering is policy, not user
// input, so it lives with the store queries.
const (
	limitedViewCap = 16
	popularViewCap = 8
	bannerViewCap  = 3
)

type Repository interface {
	// ListActive returns every non-archived product with its aggregates.
	ListActive() ([]Product, error)
	GetByID(id int) (Product, error)
	// ListByIDs returns the products whose id is present in ids, in the
	// order the ids were given. Unknown ids are skipped.
	ListByIDs(ids []int) ([]Product, error)
	// Limited returns the newest limited-availability products.
	Limited() ([]Product, error)
	// Popular returns products ranked by sort index, then purchase count.
	Popular() ([]Product, error)
	// Banners returns the newest promotional banner products.
	Banners() ([]Product, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{storage: make([]Product, 0, len(seed))}
	r.storage = append(r.storage, seed...)
	return r
}

func (r *InMemoryRepository) ListActive() ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if !p.Archived {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.storage {
		if p.ID == id && !p.Archived {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) ListByIDs(ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		for _, p := range r.storage {
			if p.ID == id && !p.Archived {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Limited() ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if !p.Archived && p.Limited {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return capped(out, limitedViewCap), nil
}

func (r *InMemoryRepository) Popular() ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if !p.Archived && !p.Limited && !p.Banner {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortIndex != out[j].SortIndex {
			return out[i].SortIndex < out[j].SortIndex
		}
		return out[i].PurchasesCount > out[j].PurchasesCount
	})
	return capped(out, popularViewCap), nil
}

func (r *InMemoryRepository) Banners() ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range r.storage {
		if !p.Archived && p.Banner && !p.Limited {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return capped(out, bannerViewCap), nil
}

// SetCount replaces a product's stock count (test helper).
func (r *InMemoryRepository) SetCount(id, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage[i].Count = count
			return
		}
	}
}

func capped(products []Product, n int) []Product {
	if len(products) > n {
		return products[:n]
	}
	return products
}
