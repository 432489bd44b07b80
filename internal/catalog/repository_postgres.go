package catalog

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *sql.DB
}

// productColumns is shared by every product query so scanProduct stays in
// sync with a single column list. Review count and average rating are
// computed here, store-side; the application never aggregates review rows
// itself.
const productColumns = `
	p.product_id, p.title, p.category_id, p.price,
	p.sale_price, p.sale_from, p.sale_to,
	p.count, p.free_delivery, p.description, p.date,
	p.sort_index, p.purchases_count, p.is_limited, p.is_banner,
	COALESCE(r.review_count, 0), COALESCE(r.avg_rating, 0)
`

const reviewAggJoin = `
	LEFT JOIN (
		SELECT product_id, COUNT(*) AS review_count, AVG(rate) AS avg_rating
		FROM reviews
		GROUP BY product_id
	) r ON r.product_id = p.product_id
`

const (
	listActiveQuery = `
		SELECT ` + productColumns + `
		FROM products p` + reviewAggJoin + `
		WHERE NOT p.archived
		ORDER BY p.product_id
	`
	getByIDQuery = `
		SELECT ` + productColumns + `
		FROM products p` + reviewAggJoin + `
		WHERE p.product_id = $1 AND NOT p.archived
	`
	listByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products p` + reviewAggJoin + `
		WHERE p.product_id = ANY($1::int[]) AND NOT p.archived
		ORDER BY array_position($1::int[], p.product_id)
	`
	limitedQuery = `
		SELECT ` + productColumns + `
		FROM products p` + reviewAggJoin + `
		WHERE NOT p.archived AND p.is_limited
		ORDER BY p.date DESC
		LIMIT 16
	`
	popularQuery = `
		SELECT ` + productColumns + `
		FROM products p` + reviewAggJoin + `
		WHERE NOT p.archived AND NOT p.is_limited AND NOT p.is_banner
		ORDER BY p.sort_index, p.purchases_count DESC
		LIMIT 8
	`
	bannersQuery = `
		SELECT ` + productColumns + `
		FROM products p` + reviewAggJoin + `
		WHERE NOT p.archived AND p.is_banner AND NOT p.is_limited
		ORDER BY p.date DESC
		LIMIT 3
	`
	tagsByProductQuery = `
		SELECT pt.product_id, t.tag_id, t.name
		FROM product_tags pt
		JOIN tags t ON t.tag_id = pt.tag_id
		WHERE pt.product_id = ANY($1::int[])
		ORDER BY t.tag_id
	`
	imagesByProductQuery = `
		SELECT product_id, src, alt
		FROM product_images
		WHERE product_id = ANY($1::int[])
		ORDER BY image_id
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListActive() ([]Product, error) {
	return r.query(listActiveQuery)
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	row := r.db.QueryRow(getByIDQuery, id)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	products := []Product{p}
	if err := r.attach(products); err != nil {
		return Product{}, err
	}
	return products[0], nil
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.query(listByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) Limited() ([]Product, error) {
	return r.query(limitedQuery)
}

func (r *PostgresRepository) Popular() ([]Product, error) {
	return r.query(popularQuery)
}

func (r *PostgresRepository) Banners() ([]Product, error) {
	return r.query(bannersQuery)
}

func (r *PostgresRepository) query(q string, args ...any) ([]Product, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attach(out); err != nil {
		return nil, err
	}
	return out, nil
}

// attach enriches products with their tag set and image list via two
// id-set queries, mirroring how the basket listing enriches lines.
func (r *PostgresRepository) attach(products []Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int, 0, len(products))
	index := make(map[int]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	rows, err := r.db.Query(tagsByProductQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var productID int
		var tag Tag
		if err := rows.Scan(&productID, &tag.ID, &tag.Name); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			products[i].Tags = append(products[i].Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	imgRows, err := r.db.Query(imagesByProductQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var productID int
		var img ProductImage
		var alt sql.NullString
		if err := imgRows.Scan(&productID, &img.Src, &alt); err != nil {
			return err
		}
		img.Alt = alt.String
		if i, ok := index[productID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return imgRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	var (
		p         Product
		salePrice decimal.NullDecimal
		saleFrom  sql.NullTime
		saleTo    sql.NullTime
		desc      sql.NullString
		rating    sql.NullFloat64
	)
	if err := scanner.Scan(
		&p.ID,
		&p.Title,
		&p.CategoryID,
		&p.Price,
		&salePrice,
		&saleFrom,
		&saleTo,
		&p.Count,
		&p.FreeDelivery,
		&desc,
		&p.Date,
		&p.SortIndex,
		&p.PurchasesCount,
		&p.Limited,
		&p.Banner,
		&p.Reviews,
		&rating,
	); err != nil {
		return Product{}, err
	}

	if salePrice.Valid {
		p.SalePrice = &salePrice.Decimal
	}
	if saleFrom.Valid {
		t := saleFrom.Time
		p.SaleFrom = &t
	}
	if saleTo.Valid {
		t := saleTo.Time
		p.SaleTo = &t
	}
	p.Description = desc.String
	p.Rating = rating.Float64
	return p, nil
}

var _ Repository = (*PostgresRepository)(nil)
