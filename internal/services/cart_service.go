package services

import (
	"context"
	"errors"
	"time"

	"tokocart/internal/cache"
	"tokocart/internal/models"
	"tokocart/internal/repositories"
	"tokocart/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// CartService handles the per-user cart ledger. Every read-modify-write of one user's
// cart runs under that user's lock; different users never contend.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	cache    cache.CartCache
	locks    *keyedMutex
	loads    singleflight.Group
	log      *logger.Logger
}

// NewCartService creates a new CartService. A nil cache disables caching.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, cartCache cache.CartCache, log *logger.Logger) *CartService {
	if cartCache == nil {
		cartCache = cache.NopCache{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &CartService{
		carts:    carts,
		products: products,
		cache:    cartCache,
		locks:    newKeyedMutex(),
		log:      log,
	}
}

// View returns the user's cart with derived totals. An unknown user has an empty cart.
func (s *CartService) View(ctx context.Context, userID string) (*models.CartView, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cached.View(), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cart cache read failed", "user_id", userID, "error", err)
	}

	// The shared load outlives any single caller; each caller only waits on its own ctx.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(userID, func() (interface{}, error) {
		unlock := s.lockCart(userID)
		defer unlock()

		cart, err := s.load(loadCtx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(loadCtx, userID, cart); err != nil {
			s.log.Warn("cart cache write failed", "user_id", userID, "error", err)
		}
		return cart, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Cart).View(), nil
	}
}

// AddLine adds quantity units of a product, merging into an existing line. The merged
// quantity must not exceed current stock. A new line snapshots price, name and image.
func (s *CartService) AddLine(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	unlock := s.lockCart(userID)
	defer unlock()

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.Find(productID)
	want := quantity
	if idx >= 0 {
		want += cart.Lines[idx].Quantity
	}
	if product.Stock < want {
		return nil, &repositories.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: want,
			Available: product.Stock,
		}
	}

	if idx >= 0 {
		cart.Lines[idx].Quantity = want
	} else {
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.Price,
			Name:      product.Name,
			Image:     product.Image,
			AddedAt:   time.Now(),
		})
	}
	if err := s.store(ctx, cart); err != nil {
		return nil, err
	}
	return cart.View(), nil
}

// SetLineQuantity overwrites a line's quantity. A quantity of zero or less removes the
// line, and does nothing when the line is absent.
func (s *CartService) SetLineQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	unlock := s.lockCart(userID)
	defer unlock()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := cart.Find(productID)

	if quantity <= 0 {
		if cart.Remove(productID) {
			if err := s.store(ctx, cart); err != nil {
				return nil, err
			}
		}
		return cart.View(), nil
	}
	if idx < 0 {
		return nil, ErrLineNotFound
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &repositories.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	cart.Lines[idx].Quantity = quantity
	if err := s.store(ctx, cart); err != nil {
		return nil, err
	}
	return cart.View(), nil
}

// RemoveLine drops the product's line. Removing an absent line is a no-op.
func (s *CartService) RemoveLine(ctx context.Context, userID, productID string) (*models.CartView, error) {
	unlock := s.lockCart(userID)
	defer unlock()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.Remove(productID) {
		if err := s.store(ctx, cart); err != nil {
			return nil, err
		}
	}
	return cart.View(), nil
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) (*models.CartView, error) {
	unlock := s.lockCart(userID)
	defer unlock()

	if err := s.clearLocked(ctx, userID); err != nil {
		return nil, err
	}
	return (&models.Cart{UserID: userID}).View(), nil
}

func (s *CartService) lockCart(userID string) func() {
	return s.locks.Lock(userID)
}

// load reads the stored cart, bypassing the cache. The caller holds the user's lock.
func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, repositories.ErrCartNotFound) {
		return &models.Cart{UserID: userID, Lines: []models.CartLine{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// store persists cart, deleting it when no lines are left, and invalidates the cached copy.
func (s *CartService) store(ctx context.Context, cart *models.Cart) error {
	var err error
	if len(cart.Lines) == 0 {
		err = s.carts.DeleteCart(ctx, cart.UserID)
	} else {
		err = s.carts.SaveCart(ctx, cart)
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx, cart.UserID)
	return nil
}

func (s *CartService) clearLocked(ctx context.Context, userID string) error {
	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *CartService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.Warn("cart cache invalidation failed", "user_id", userID, "error", err)
	}
}
