package order

import (
	"database/sql/driver"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/megano-shop/backend/internal/apperr"
)

func orderRow(id, userID int, status, total string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"order_id", "user_id", "created_at", "full_name", "email", "phone",
		"delivery_type", "payment_type", "city", "address", "status", "total_cost",
	}).AddRow(id, userID, "2026-08-01T10:00:00Z", "Ann Lee", "ann@example.com", "+1555",
		"ordinary", "online", "Riga", "Main st 1", status, total)
}

func TestPostgresRepository_CreateWritesOrderAndLines(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(11))
	mock.ExpectExec("INSERT INTO order_products").
		WithArgs(11, 1, "Gaming Monitor", 2, decimalArg("12000")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	id, err := repo.Create(Order{
		UserID:    7,
		TotalCost: decimal.NewFromInt(24000),
		Products: []Line{
			{ProductID: 1, Title: "Gaming Monitor", Count: 2, Price: decimal.NewFromInt(12000)},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 11 {
		t.Fatalf("expected order id 11, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_GetByIDScopedToUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM orders").WithArgs(11, 7).
		WillReturnRows(orderRow(11, 7, "pending", "24899.90"))
	lineRows := sqlmock.NewRows([]string{"order_id", "product_id", "title", "count", "price"}).
		AddRow(11, 1, "Gaming Monitor", 2, "12000").
		AddRow(11, 2, "Office keyboard", 1, "899.90")
	mock.ExpectQuery("FROM order_products").WillReturnRows(lineRows)

	repo := NewPostgresRepository(db)
	ord, err := repo.GetByID(7, 11)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ord.Status != StatusPending || len(ord.Products) != 2 {
		t.Fatalf("unexpected order: %+v", ord)
	}
	if !ord.TotalCost.Equal(decimal.RequireFromString("24899.90")) {
		t.Fatalf("expected exact total, got %s", ord.TotalCost)
	}
	if !ord.Products[1].Price.Equal(decimal.RequireFromString("899.90")) {
		t.Fatalf("expected frozen line price, got %s", ord.Products[1].Price)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	empty := sqlmock.NewRows([]string{
		"order_id", "user_id", "created_at", "full_name", "email", "phone",
		"delivery_type", "payment_type", "city", "address", "status", "total_cost",
	})
	mock.ExpectQuery("FROM orders").WithArgs(11, 8).WillReturnRows(empty)

	repo := NewPostgresRepository(db)
	if _, err := repo.GetByID(8, 11); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_ConfirmTakesStockAndClearsBasket(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(11, 7).
		WillReturnRows(orderRow(11, 7, "pending", "24000"))
	mock.ExpectQuery("FROM order_products").WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "count", "price"}).
			AddRow(1, "Gaming Monitor", 2, "12000"))
	mock.ExpectQuery("FROM products").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count", "title"}).AddRow(5, "Gaming Monitor"))
	mock.ExpectExec("SET count = count -").WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM basket").WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	if err := repo.Confirm(7, 11, ConfirmRequest{}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_ConfirmShortStockRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(11, 7).
		WillReturnRows(orderRow(11, 7, "pending", "36000"))
	mock.ExpectQuery("FROM order_products").WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "count", "price"}).
			AddRow(1, "Gaming Monitor", 3, "12000"))
	mock.ExpectQuery("FROM products").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count", "title"}).AddRow(2, "Gaming Monitor"))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	err = repo.Confirm(7, 11, ConfirmRequest{})
	if !apperr.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	var se *apperr.InsufficientStockError
	errors.As(err, &se)
	if se.ProductID != 1 || se.Title != "Gaming Monitor" {
		t.Fatalf("error should name the product, got %+v", se)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_ConfirmMapsSerializationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(11, 7).
		WillReturnRows(orderRow(11, 7, "pending", "24000"))
	mock.ExpectQuery("FROM order_products").WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "title", "count", "price"}).
			AddRow(1, "Gaming Monitor", 2, "12000"))
	mock.ExpectQuery("FROM products").WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count", "title"}).AddRow(5, "Gaming Monitor"))
	mock.ExpectExec("SET count = count -").WithArgs(1, 2).
		WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	err = repo.Confirm(7, 11, ConfirmRequest{})
	if !errors.Is(err, apperr.ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict for SQLSTATE 40001, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_ConfirmUnknownSubmittedProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(11, 7).
		WillReturnRows(orderRow(11, 7, "pending", "24000"))
	mock.ExpectQuery("FROM products").WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"count", "title"}))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	err = repo.Confirm(7, 11, ConfirmRequest{Products: []LineInput{{ID: 99, Count: 1}}})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unknown product id, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresRepository_ConfirmRejectsAccepted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(11, 7).
		WillReturnRows(orderRow(11, 7, "accepted", "24000"))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	if err := repo.Confirm(7, 11, ConfirmRequest{}); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
}

// decimalArg matches a decimal argument by value rather than by
// representation, trailing zeros aside.
type decimalArg string

func (d decimalArg) Match(v driver.Value) bool {
	want := decimal.RequireFromString(string(d))
	switch got := v.(type) {
	case string:
		parsed, err := decimal.NewFromString(got)
		return err == nil && parsed.Equal(want)
	case []byte:
		parsed, err := decimal.NewFromString(string(got))
		return err == nil && parsed.Equal(want)
	case float64:
		return decimal.NewFromFloat(got).Equal(want)
	case int64:
		return decimal.NewFromInt(got).Equal(want)
	}
	return false
}
