package category

type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Category is a catalog section. The tree is two levels deep: root
// categories with their active subcategories.
type Category struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Image         *Image     `json:"image,omitempty"`
	Subcategories []Category `json:"subcategories"`
}
