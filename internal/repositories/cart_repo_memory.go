package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tokocart/internal/models"
)

// MemoryCartRepository is an in-memory implementation of CartRepository.
type MemoryCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMemoryCartRepository creates a new instance of MemoryCartRepository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetCart returns a copy of the stored cart.
func (r *MemoryCartRepository) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart for user %s: %w", userID, ErrCartNotFound)
	}
	cart = cloneCart(cart)
	return &cart, nil
}

// SaveCart stores a copy of cart.
func (r *MemoryCartRepository) SaveCart(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.carts[cart.UserID]; ok {
		cart.CreatedAt = existing.CreatedAt
	} else if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	r.carts[cart.UserID] = cloneCart(*cart)
	return nil
}

// DeleteCart drops the user's cart if there is one.
func (r *MemoryCartRepository) DeleteCart(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
