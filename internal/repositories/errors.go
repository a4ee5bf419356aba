package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every "record does not exist" error of this package.
	ErrNotFound = errors.New("not found")

	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrCartNotFound    = fmt.Errorf("cart %w", ErrNotFound)

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStatusConflict    = errors.New("order status was changed concurrently")
	ErrDuplicate         = errors.New("record already exists")
)

// InsufficientStockError names the product whose stock could not cover a request.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)", name, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientStock) hold.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsStoreAnswer reports errors that are legitimate store outcomes rather than store
// failures. The store guard never retries them.
func IsStoreAnswer(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrStatusConflict) ||
		errors.Is(err, ErrDuplicate)
}
