package basket

import (
	"database/sql"
	"fmt"
)

const (
	listQuery = `
		SELECT product_id, count
		FROM basket
		WHERE user_id = $1
		ORDER BY product_id`

	addQuery = `
		INSERT INTO basket (user_id, product_id, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET count = basket.count + EXCLUDED.count`

	selectLineQuery = `
		SELECT count
		FROM basket
		WHERE user_id = $1 AND product_id = $2
		FOR UPDATE`

	deleteLineQuery = `
		DELETE FROM basket
		WHERE user_id = $1 AND product_id = $2`

	decrementLineQuery = `
		UPDATE basket
		SET count = count - $3
		WHERE user_id = $1 AND product_id = $2`

	clearQuery = `
		DELETE FROM basket
		WHERE user_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(userID int) ([]Line, error) {
	rows, err := r.db.Query(listQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list basket: %w", err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Count); err != nil {
			return nil, fmt.Errorf("scan basket line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate basket lines: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) Add(userID, productID, count int) error {
	if _, err := r.db.Exec(addQuery, userID, productID, count); err != nil {
		return fmt.Errorf("add basket line: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(userID, productID, count int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(selectLineQuery, userID, productID).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock basket line: %w", err)
	}

	if current <= count {
		_, err = tx.Exec(deleteLineQuery, userID, productID)
	} else {
		_, err = tx.Exec(decrementLineQuery, userID, productID, count)
	}
	if err != nil {
		return fmt.Errorf("remove basket line: %w", err)
	}
	return tx.Commit()
}

func (r *PostgresRepository) Clear(userID int) error {
	if _, err := r.db.Exec(clearQuery, userID); err != nil {
		return fmt.Errorf("clear basket: %w", err)
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
