package order

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/megano-shop/backend/internal/apperr"
)

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, created_at, full_name, email, phone,
			delivery_type, payment_type, city, address, status, total_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING order_id`

	insertOrderLineQuery = `
		INSERT INTO order_products (order_id, product_id, title, count, price)
		VALUES ($1, $2, $3, $4, $5)`

	orderColumns = `order_id, user_id, created_at, full_name, email, phone,
		delivery_type, payment_type, city, address, status, total_cost`

	getOrderQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_id = $1 AND user_id = $2`

	lockOrderQuery = getOrderQuery + `
		FOR UPDATE`

	listOrdersQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY order_id DESC`

	orderLinesQuery = `
		SELECT order_id, product_id, title, count, price
		FROM order_products
		WHERE order_id = ANY($1::int[])
		ORDER BY order_id, product_id`

	confirmOrderQuery = `
		UPDATE orders
		SET full_name = $2, email = $3, phone = $4, delivery_type = $5,
		    payment_type = $6, city = $7, address = $8, status = $9
		WHERE order_id = $1`

	lockProductQuery = `
		SELECT count, title
		FROM products
		WHERE product_id = $1
		FOR UPDATE`

	takeStockQuery = `
		UPDATE products
		SET count = count - $2,
		    purchases_count = purchases_count + $2
		WHERE product_id = $1`

	clearBasketQuery = `
		DELETE FROM basket
		WHERE user_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ord Order) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback()

	var orderID int
	err = tx.QueryRow(insertOrderQuery,
		ord.UserID, ord.CreatedAt, ord.FullName, ord.Email, ord.Phone,
		ord.DeliveryType, ord.PaymentType, ord.City, ord.Address,
		string(StatusPending), ord.TotalCost,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range ord.Products {
		_, err := tx.Exec(insertOrderLineQuery,
			orderID, line.ProductID, line.Title, line.Count, line.Price)
		if err != nil {
			return 0, fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create order: %w", err)
	}
	return orderID, nil
}

func (r *PostgresRepository) GetByID(userID, orderID int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderQuery, orderID, userID))
	if err != nil {
		return Order{}, err
	}
	if err := r.attachLines([]Order{ord}); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	rows, err := r.db.Query(listOrdersQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, ord)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if err := r.attachLines(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) Confirm(userID, orderID int, req ConfirmRequest) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin confirm: %w", err)
	}
	defer tx.Rollback()

	ord, err := scanOrder(tx.QueryRow(lockOrderQuery, orderID, userID))
	if err != nil {
		return err
	}
	if ord.Status != StatusPending {
		return ErrNotPending
	}

	// submitted positions win over the frozen lines
	lines := req.Products
	if len(lines) == 0 {
		stored, err := r.linesOf(tx, orderID)
		if err != nil {
			return err
		}
		for _, line := range stored {
			lines = append(lines, LineInput{ID: line.ProductID, Count: line.Count})
		}
	}

	// lock products in id order so concurrent confirms never deadlock
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	for _, line := range lines {
		var count int
		var title string
		err := tx.QueryRow(lockProductQuery, line.ID).Scan(&count, &title)
		if err == sql.ErrNoRows {
			return apperr.Validation("id", "product %d does not exist", line.ID)
		}
		if err != nil {
			return asStockConflict(fmt.Errorf("lock product %d: %w", line.ID, err))
		}
		if count < line.Count {
			return &apperr.InsufficientStockError{ProductID: line.ID, Title: title}
		}
	}
	for _, line := range lines {
		if _, err := tx.Exec(takeStockQuery, line.ID, line.Count); err != nil {
			return asStockConflict(fmt.Errorf("take stock for product %d: %w", line.ID, err))
		}
	}

	req.applyTo(&ord)
	_, err = tx.Exec(confirmOrderQuery,
		orderID, ord.FullName, ord.Email, ord.Phone,
		ord.DeliveryType, ord.PaymentType, ord.City, ord.Address,
		string(StatusAccepted))
	if err != nil {
		return fmt.Errorf("confirm order: %w", err)
	}

	if _, err := tx.Exec(clearBasketQuery, userID); err != nil {
		return fmt.Errorf("clear basket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return asStockConflict(fmt.Errorf("commit confirm: %w", err))
	}
	return nil
}

func (r *PostgresRepository) linesOf(tx *sql.Tx, orderID int) ([]Line, error) {
	rows, err := tx.Query(`
		SELECT product_id, title, count, price
		FROM order_products
		WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Title, &l.Count, &l.Price); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// attachLines loads the frozen product lines of every order in one query.
func (r *PostgresRepository) attachLines(orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int, 0, len(orders))
	index := make(map[int]int, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
		index[orders[i].ID] = i
		orders[i].Products = []Line{}
	}

	rows, err := r.db.Query(orderLinesQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int
		var l Line
		if err := rows.Scan(&orderID, &l.ProductID, &l.Title, &l.Count, &l.Price); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Products = append(orders[i].Products, l)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var status string
	var total decimal.NullDecimal
	var createdAt, fullName, email, phone sql.NullString
	var deliveryType, paymentType, city, address sql.NullString
	err := row.Scan(&ord.ID, &ord.UserID, &createdAt, &fullName, &email, &phone,
		&deliveryType, &paymentType, &city, &address, &status, &total)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	ord.CreatedAt = createdAt.String
	ord.FullName = fullName.String
	ord.Email = email.String
	ord.Phone = phone.String
	ord.DeliveryType = deliveryType.String
	ord.PaymentType = paymentType.String
	ord.City = city.String
	ord.Address = address.String
	ord.Status = Status(status)
	if total.Valid {
		ord.TotalCost = total.Decimal
	}
	return ord, nil
}

// asStockConflict maps store serialization failures onto ErrStockConflict
// so handlers can answer 409 instead of 500. The conflict is never
// silently retried.
func asStockConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure and deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", apperr.ErrStockConflict, pgErr.Message)
		}
	}
	return err
}

var _ Repository = (*PostgresRepository)(nil)
