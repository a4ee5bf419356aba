package repositories

import (
	"context"

	"tokocart/internal/models"
)

// ProductFilter narrows a catalog listing. Page is 1-based; Limit <= 0 means no limit.
type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

func (f ProductFilter) offset() int {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// List returns one page of matching products, newest first, and the total match count.
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes the descriptive fields and price. Stock is only changed through
	// SetStock, DecrementStock and RestoreStock.
	Update(ctx context.Context, product *models.Product) error
	SetStock(ctx context.Context, id string, stock int) error
	Delete(ctx context.Context, id string) error
	// Categories returns the distinct categories in use, sorted.
	Categories(ctx context.Context) ([]string, error)

	// DecrementStock subtracts amount from the product's stock if and only if the result
	// stays non-negative, as one atomic step against concurrent callers. It returns the
	// product as it is right after the decrement, or an *InsufficientStockError.
	DecrementStock(ctx context.Context, id string, amount int) (*models.Product, error)
	// RestoreStock adds amount back. It only undoes a previous DecrementStock.
	RestoreStock(ctx context.Context, id string, amount int) error
}
