package basket

import (
	"errors"

	"github.com/megano-shop/backend/internal/apperr"
	"github.com/megano-shop/backend/internal/catalog"
)

// ProductSource supplies product snapshots for basket enrichment
// and stock validation.
type ProductSource interface {
	ListByIDs(ids []int) ([]catalog.Product, error)
	GetByID(id int) (catalog.Product, error)
}

type Service struct {
	repo     Repository
	products ProductSource
}

func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products}
}

// List returns the basket as catalog items where Count carries the
// basket quantity rather than the stock level. Lines whose product no
// longer exists are skipped.
func (s *Service) List(userID int) ([]Item, error) {
	lines, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []Item{}, nil
	}

	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		item := p.Item()
		item.Count = l.Count
		items = append(items, item)
	}
	return items, nil
}

// Add puts count units of a product into the user's basket. The
// product must exist and have stock on hand; quantities on repeated
// adds accumulate on a single line.
func (s *Service) Add(userID, productID, count int) error {
	if count < 1 {
		return apperr.Validation("count", "must be at least 1")
	}
	p, err := s.products.GetByID(productID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return err
	}
	if p.Count <= 0 {
		return apperr.Validation("id", "product %d is out of stock", productID)
	}
	return s.repo.Add(userID, productID, count)
}

// Remove takes count units off the user's basket line, deleting the
// line when the quantity drops to zero or below.
func (s *Service) Remove(userID, productID, count int) error {
	if count < 1 {
		return apperr.Validation("count", "must be at least 1")
	}
	return s.repo.Remove(userID, productID, count)
}
