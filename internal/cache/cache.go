// Package cache holds read-through copies of carts.
package cache

import (
	"context"
	"errors"

	"tokocart/internal/models"
)

// CartCache stores whole carts keyed by user. Derived totals are not cached.
type CartCache interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Set(ctx context.Context, userID string, cart *models.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache is used when no cache is configured. Every Get misses.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*models.Cart, error) { return nil, ErrCacheMiss }

func (NopCache) Set(context.Context, string, *models.Cart) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
