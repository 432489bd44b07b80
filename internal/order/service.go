package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/megano-shop/backend/internal/apperr"
	"github.com/megano-shop/backend/internal/catalog"
)

// ProductSource resolves posted product ids into catalog products so
// titles and effective prices can be frozen into the order.
type ProductSource interface {
	ListByIDs(ids []int) ([]catalog.Product, error)
}

type Service struct {
	repo     Repository
	products ProductSource
}

func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products}
}

// Create freezes the posted positions into a pending order. Each line
// snapshots the product's title and effective price at this moment;
// the total is the exact sum of price times count over the lines.
// Stock is not checked or reserved here, only Confirm takes stock.
func (s *Service) Create(userID int, inputs []LineInput) (int, error) {
	if len(inputs) == 0 {
		return 0, apperr.Validation("products", "order must contain at least one position")
	}

	// repeated ids merge into one position, the storage holds one line
	// per (order, product)
	ids := make([]int, 0, len(inputs))
	counts := make(map[int]int, len(inputs))
	for _, in := range inputs {
		if in.Count < 1 {
			return 0, apperr.Validation("count", "product %d: count must be at least 1", in.ID)
		}
		if _, seen := counts[in.ID]; !seen {
			ids = append(ids, in.ID)
		}
		counts[in.ID] += in.Count
	}

	products, err := s.products.ListByIDs(ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[int]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]Line, 0, len(ids))
	total := decimal.Zero
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return 0, apperr.Validation("id", "product %d does not exist", id)
		}
		price := p.EffectivePrice()
		count := counts[id]
		lines = append(lines, Line{
			ProductID: p.ID,
			Title:     p.Title,
			Count:     count,
			Price:     price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(count))))
	}

	return s.repo.Create(Order{
		UserID:    userID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    StatusPending,
		TotalCost: total,
		Products:  lines,
	})
}

func (s *Service) GetByID(userID, orderID int) (Order, error) {
	return s.repo.GetByID(userID, orderID)
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) Confirm(userID, orderID int, req ConfirmRequest) error {
	return s.repo.Confirm(userID, orderID, req)
}
