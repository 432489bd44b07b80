package order

import (
	"errors"
	"sync"

	"github.com/megano-shop/backend/internal/apperr"
	"github.com/megano-shop/backend/internal/catalog"
)

var (
	ErrNotFound = apperr.ErrNotFound
	// ErrNotPending is returned when confirming an order that has
	// already been accepted.
	ErrNotPending = errors.New("order is not pending")
)

// BasketClearer empties a user's basket once their order is confirmed.
type BasketClearer interface {
	Clear(userID int) error
}

type Repository interface {
	// Create stores a pending order and returns its id. Stock is not
	// touched at creation time.
	Create(ord Order) (int, error)
	// GetByID returns the user's order. Orders of other users look
	// like ErrNotFound.
	GetByID(userID, orderID int) (Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(userID int) ([]Order, error)
	// Confirm applies checkout fields, takes stock for every line and
	// marks the order accepted, all atomically. When any line exceeds
	// the stock on hand no stock moves at all and the failing product
	// is reported. The user's basket is emptied on success.
	Confirm(userID, orderID int, req ConfirmRequest) error
}

// InMemoryRepository keeps orders and a product stock ledger in memory.
// Used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.Mutex
	orders []Order
	nextID int
	stock  map[int]int
	titles map[int]string
	basket BasketClearer
}

// NewInMemoryRepository seeds the stock ledger from the given products.
// basket may be nil when no basket is wired.
func NewInMemoryRepository(products []catalog.Product, basket BasketClearer) *InMemoryRepository {
	r := &InMemoryRepository{
		nextID: 1,
		stock:  make(map[int]int, len(products)),
		titles: make(map[int]string, len(products)),
		basket: basket,
	}
	for _, p := range products {
		r.stock[p.ID] = p.Count
		r.titles[p.ID] = p.Title
	}
	return r
}

func (r *InMemoryRepository) Create(ord Order) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ord.ID = r.nextID
	r.nextID++
	ord.Status = StatusPending
	r.orders = append(r.orders, ord)
	return ord.ID, nil
}

func (r *InMemoryRepository) GetByID(userID, orderID int) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ord := range r.orders {
		if ord.ID == orderID && ord.UserID == userID {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Order, 0)
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			out = append(out, r.orders[i])
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Confirm(userID, orderID int, req ConfirmRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, ord := range r.orders {
		if ord.ID == orderID && ord.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	if r.orders[idx].Status != StatusPending {
		return ErrNotPending
	}

	// submitted positions win over the frozen lines
	lines := make([]LineInput, 0, len(r.orders[idx].Products))
	if len(req.Products) > 0 {
		lines = req.Products
	} else {
		for _, line := range r.orders[idx].Products {
			lines = append(lines, LineInput{ID: line.ProductID, Count: line.Count})
		}
	}

	// check every line before moving any stock
	for _, line := range lines {
		if _, known := r.titles[line.ID]; !known {
			return apperr.Validation("id", "product %d does not exist", line.ID)
		}
		if r.stock[line.ID] < line.Count {
			return &apperr.InsufficientStockError{
				ProductID: line.ID,
				Title:     r.titles[line.ID],
			}
		}
	}
	for _, line := range lines {
		r.stock[line.ID] -= line.Count
	}

	req.applyTo(&r.orders[idx])
	r.orders[idx].Status = StatusAccepted

	if r.basket != nil {
		return r.basket.Clear(userID)
	}
	return nil
}

// Stock reports the remaining stock of a product (test helper).
func (r *InMemoryRepository) Stock(productID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[productID]
}
