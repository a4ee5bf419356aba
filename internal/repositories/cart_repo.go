package repositories

import (
	"context"

	"tokocart/internal/models"
)

// CartRepository stores one cart per user. A stored cart is replaced as a whole.
type CartRepository interface {
	// GetCart returns ErrCartNotFound when the user has no stored cart.
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	// SaveCart replaces the stored cart, creating it if needed. Line order is kept.
	SaveCart(ctx context.Context, cart *models.Cart) error
	// DeleteCart removes the stored cart. Deleting a missing cart is not an error.
	DeleteCart(ctx context.Context, userID string) error
}

func cloneCart(c models.Cart) models.Cart {
	lines := make([]models.CartLine, len(c.Lines))
	copy(lines, c.Lines)
	c.Lines = lines
	return c
}
