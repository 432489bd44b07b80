package catalog

// ListingRequest is one catalog listing query: optional filter criteria,
// one sort key with a direction, and a page selection.
type ListingRequest struct {
	Filter      FilterConfig
	Sort        SortKey
	SortType    Direction
	Limit       int
	CurrentPage int
}

// Service composes the filter, the sort and the paginator over the
// store's active product set, and exposes the fixed derived views.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List runs one catalog listing request: filter, sort, paginate.
func (s *Service) List(req ListingRequest) (Page, error) {
	products, err := s.repo.ListActive()
	if err != nil {
		return Page{}, err
	}

	filtered := req.Filter.Apply(products)
	SortProducts(filtered, req.Sort, req.SortType)

	size := req.Limit
	if size == 0 {
		size = DefaultPageSize
	}
	page := req.CurrentPage
	if page == 0 {
		page = DefaultPage
	}
	return Paginate(filtered, size, page)
}

// Limited, Popular and Banners are fixed views: their ordering and caps
// are store policy, no user-supplied filter or sort applies.

func (s *Service) Limited() ([]Item, error) {
	products, err := s.repo.Limited()
	if err != nil {
		return nil, err
	}
	return itemsOf(products), nil
}

func (s *Service) Popular() ([]Item, error) {
	products, err := s.repo.Popular()
	if err != nil {
		return nil, err
	}
	return itemsOf(products), nil
}

func (s *Service) Banners() ([]Item, error) {
	products, err := s.repo.Banners()
	if err != nil {
		return nil, err
	}
	return itemsOf(products), nil
}

func (s *Service) GetByID(id int) (Item, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return Item{}, err
	}
	return p.Item(), nil
}

// ListByIDs exposes raw products for collaborators (basket and order
// services) that need stock counts and effective prices, not projections.
func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ids)
}
