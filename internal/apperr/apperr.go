package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers unknown products, orders and basket lines.
	ErrNotFound = errors.New("not found")

	// ErrStockConflict signals a store-detected write conflict during order
	// confirmation. It is surfaced to the caller and never retried here:
	// a silent retry could decrement stock twice.
	ErrStockConflict = errors.New("concurrent stock update conflict")
)

// ValidationError reports malformed input with a field-level message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a ValidationError for the given field.
func Validation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientStockError names the product that failed the confirm-time
// stock check.
type InsufficientStockError struct {
	ProductID int
	Title     string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s)", e.ProductID, e.Title)
}

// IsInsufficientStock reports whether err is (or wraps) an
// InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var se *InsufficientStockError
	return errors.As(err, &se)
}
