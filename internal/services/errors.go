package services

import (
	"errors"
	"fmt"

	"github.com/magacin-dev/magacin/internal/validation"
)

// Expected, recoverable conditions surfaced to the HTTP layer. Anything else
// coming out of a service is an internal fault and must stay generic.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// ValidationError carries per-field violations discovered at the operation
// boundary. Handlers return it as the details of a 400.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string { return "validation_failed" }

// InsufficientStockError aborts a sale completion whose line quantity exceeds
// the product's quantity on hand. The whole transaction rolls back.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q (id=%d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}
