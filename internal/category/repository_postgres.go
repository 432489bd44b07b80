package category

import (
	"database/sql"
	"fmt"
)

const listQuery = `
	SELECT category_id, title, image_src, image_alt, parent_id, active
	FROM categories
	ORDER BY category_id`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Category, error) {
	dbRows, err := r.db.Query(listQuery)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer dbRows.Close()

	rows := make([]Row, 0)
	for dbRows.Next() {
		var row Row
		var imageSrc, imageAlt sql.NullString
		var parentID sql.NullInt64
		if err := dbRows.Scan(&row.ID, &row.Title, &imageSrc, &imageAlt, &parentID, &row.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if imageSrc.Valid {
			row.Image = &Image{Src: imageSrc.String, Alt: imageAlt.String}
		}
		if parentID.Valid {
			id := int(parentID.Int64)
			row.ParentID = &id
		}
		rows = append(rows, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return buildTree(rows), nil
}

var _ Repository = (*PostgresRepository)(nil)
