package category

import "sync"

type Repository interface {
	// List returns active root categories with their active children.
	List() ([]Category, error)
}

// Row is the flat storage form of a category.
type Row struct {
	ID       int
	Title    string
	Image    *Image
	ParentID *int
	Active   bool
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows []Row
}

func NewInMemoryRepository(seed []Row) *InMemoryRepository {
	r := &InMemoryRepository{rows: make([]Row, 0, len(seed))}
	r.rows = append(r.rows, seed...)
	return r
}

func (r *InMemoryRepository) List() ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return buildTree(r.rows), nil
}

// buildTree assembles root categories and one level of children,
// skipping inactive rows entirely.
func buildTree(rows []Row) []Category {
	roots := make([]Category, 0)
	index := make(map[int]int)
	for _, row := range rows {
		if !row.Active || row.ParentID != nil {
			continue
		}
		index[row.ID] = len(roots)
		roots = append(roots, Category{
			ID:            row.ID,
			Title:         row.Title,
			Image:         row.Image,
			Subcategories: []Category{},
		})
	}
	for _, row := range rows {
		if !row.Active || row.ParentID == nil {
			continue
		}
		if i, ok := index[*row.ParentID]; ok {
			roots[i].Subcategories = append(roots[i].Subcategories, Category{
				ID:            row.ID,
				Title:         row.Title,
				Image:         row.Image,
				Subcategories: []Category{},
			})
		}
	}
	return roots
}
