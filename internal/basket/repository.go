package basket

import (
	"sort"
	"sync"

	"github.com/megano-shop/backend/internal/apperr"
)

var ErrNotFound = apperr.ErrNotFound

type Repository interface {
	// List returns the user's basket lines ordered by product id.
	List(userID int) ([]Line, error)
	// Add merges count into the (user, product) line, creating it when
	// absent. Quantities accumulate; a second line is never created.
	Add(userID, productID, count int) error
	// Remove deletes the line when its quantity is at most count,
	// otherwise decrements it. ErrNotFound when no line exists.
	Remove(userID, productID, count int) error
	// Clear deletes every line of the user.
	Clear(userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	lines map[int]map[int]int // userID -> productID -> count
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{lines: make(map[int]map[int]int)}
}

func (r *InMemoryRepository) List(userID int) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Line, 0, len(r.lines[userID]))
	for productID, count := range r.lines[userID] {
		out = append(out, Line{ProductID: productID, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *InMemoryRepository) Add(userID, productID, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lines[userID] == nil {
		r.lines[userID] = make(map[int]int)
	}
	r.lines[userID][productID] += count
	return nil
}

func (r *InMemoryRepository) Remove(userID, productID, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.lines[userID][productID]
	if !ok {
		return ErrNotFound
	}
	if current <= count {
		delete(r.lines[userID], productID)
		return nil
	}
	r.lines[userID][productID] = current - count
	return nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lines, userID)
	return nil
}
