package repositories

import (
	"context"

	"tokocart/internal/models"
)

// OrderFilter narrows an order listing. An empty UserID lists every order.
type OrderFilter struct {
	UserID string
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// List returns the matching orders with their lines, newest first.
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	// UpdateStatus moves the order from one status to another. It fails with
	// ErrStatusConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error)
}
