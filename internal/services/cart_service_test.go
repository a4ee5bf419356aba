package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tokocart/internal/cache"
	"tokocart/internal/models"
	"tokocart/internal/repositories"
	"tokocart/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFixture struct {
	products *repositories.MemoryProductRepository
	carts    *repositories.MemoryCartRepository
	orders   *repositories.MemoryOrderRepository
}

func newStoreFixture() *storeFixture {
	return &storeFixture{
		products: repositories.NewMemoryProductRepository(),
		carts:    repositories.NewMemoryCartRepository(),
		orders:   repositories.NewMemoryOrderRepository(),
	}
}

func (f *storeFixture) addProduct(t *testing.T, name, unitPrice string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price(unitPrice), Stock: stock, Category: "Electronics", Image: "img/" + name}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *storeFixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestCartService_AddLineSnapshotsAndMerges(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "75", 5)
	svc := services.NewCartService(f.carts, f.products, nil, nil)

	view, err := svc.AddLine(ctx, "u1", a.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Keyboard", view.Items[0].Name)
	assert.Equal(t, "img/Keyboard", view.Items[0].Image)
	assert.Equal(t, "150.00", view.Total.StringFixed(2))

	view, err = svc.AddLine(ctx, "u1", a.ID, 3)
	require.NoError(t, err)
	require.Len(t, view.Items, 1, "lines are merged per product")
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 5, view.ItemCount)

	_, err = svc.AddLine(ctx, "u1", a.ID, 1)
	var stockErr *repositories.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 6, stockErr.Requested, "merged quantity is checked")
	assert.Equal(t, 5, stockErr.Available)

	view, err = svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, view.ItemCount)
}

func TestCartService_AddLineRejects(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	soldOut := f.addProduct(t, "Sold Out", "10", 0)
	svc := services.NewCartService(f.carts, f.products, nil, nil)

	_, err := svc.AddLine(ctx, "u1", soldOut.ID, 1)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	_, err = svc.AddLine(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.AddLine(ctx, "u1", soldOut.ID, 0)
	assert.ErrorIs(t, err, services.ErrInvalidQuantity)

	view, err := svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.ItemCount)
	assert.True(t, view.Total.IsZero())
}

func TestCartService_PriceSnapshotSurvivesCatalogChange(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	a := f.addProduct(t, "Mouse", "25", 10)
	svc := services.NewCartService(f.carts, f.products, nil, nil)

	_, err := svc.AddLine(ctx, "u1", a.ID, 1)
	require.NoError(t, err)

	changed := *a
	changed.Price = price("99")
	require.NoError(t, f.products.Update(ctx, &changed))

	view, err := svc.AddLine(ctx, "u1", a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "25", view.Items[0].Price.String())
	assert.Equal(t, "50.00", view.Total.StringFixed(2))
}

func TestCartService_SetLineQuantity(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "10", 4)
	b := f.addProduct(t, "Mouse", "5", 4)
	svc := services.NewCartService(f.carts, f.products, nil, nil)

	_, err := svc.AddLine(ctx, "u1", a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "u1", b.ID, 2)
	require.NoError(t, err)

	view, err := svc.SetLineQuantity(ctx, "u1", a.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 6, view.ItemCount)

	_, err = svc.SetLineQuantity(ctx, "u1", a.ID, 5)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	view, err = svc.SetLineQuantity(ctx, "u1", a.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, b.ID, view.Items[0].ProductID)
	assert.Equal(t, 2, view.ItemCount)

	view, err = svc.SetLineQuantity(ctx, "u1", a.ID, 0)
	require.NoError(t, err, "removing an absent line is a no-op")
	assert.Len(t, view.Items, 1)

	_, err = svc.SetLineQuantity(ctx, "u1", a.ID, 2)
	assert.ErrorIs(t, err, services.ErrLineNotFound)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCartService_RemoveLineAndClear(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "10", 4)
	b := f.addProduct(t, "Mouse", "5", 4)
	svc := services.NewCartService(f.carts, f.products, nil, nil)

	_, err := svc.AddLine(ctx, "u1", a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, "u1", b.ID, 1)
	require.NoError(t, err)

	before, err := svc.View(ctx, "u1")
	require.NoError(t, err)
	after, err := svc.RemoveLine(ctx, "u1", "not-in-cart")
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)

	view, err := svc.RemoveLine(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	view, err = svc.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = f.carts.GetCart(ctx, "u1")
	assert.ErrorIs(t, err, repositories.ErrCartNotFound)
}

func TestCartService_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "10", 1000)
	svc := services.NewCartService(f.carts, f.products, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddLine(ctx, "u1", a.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := svc.View(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 50, view.Items[0].Quantity)
}

func TestCartService_ReadsThroughAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "10", 10)
	svc := services.NewCartService(f.carts, f.products, cache.NewRedisCache(client), nil)

	_, err := svc.AddLine(ctx, "u1", a.ID, 2)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:u1"), "mutations invalidate")

	view, err := svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, view.ItemCount)
	assert.True(t, mr.Exists("cart:u1"), "views fill the cache")

	_, err = svc.SetLineQuantity(ctx, "u1", a.ID, 3)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:u1"))

	view, err = svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, view.ItemCount)
}

// failingCache fails every call, as an unreachable Redis would.
type failingCache struct{}

var errCacheDown = errors.New("redis: connection refused")

func (failingCache) Get(context.Context, string) (*models.Cart, error) { return nil, errCacheDown }
func (failingCache) Set(context.Context, string, *models.Cart) error { return errCacheDown }
func (failingCache) Delete(context.Context, string) error { return errCacheDown }

func TestCartService_CacheFailuresDoNotFailRequests(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "10", 10)
	svc := services.NewCartService(f.carts, f.products, failingCache{}, nil)

	_, err := svc.AddLine(ctx, "u1", a.ID, 1)
	require.NoError(t, err)

	view, err := svc.View(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)
}

// failingCartRepository fails writes, as a store outage would.
type failingCartRepository struct {
	*repositories.MemoryCartRepository
}

func (failingCartRepository) SaveCart(context.Context, *models.Cart) error {
	return fmt.Errorf("write carts: %w", errors.New("i/o timeout"))
}

func TestCartService_StoreFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "10", 10)
	svc := services.NewCartService(failingCartRepository{repositories.NewMemoryCartRepository()}, f.products, nil, nil)

	_, err := svc.AddLine(ctx, "u1", a.ID, 1)
	assert.ErrorContains(t, err, "i/o timeout")
}

// slowCartRepository holds every GetCart until release is closed, honoring ctx meanwhile.
type slowCartRepository struct {
	*repositories.MemoryCartRepository
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *slowCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	r.once.Do(func() { close(r.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.release:
	}
	return r.MemoryCartRepository.GetCart(ctx, userID)
}

func TestCartService_CancelledViewDoesNotFailSharedLoad(t *testing.T) {
	f := newStoreFixture()
	a := f.addProduct(t, "Keyboard", "75", 5)
	repo := &slowCartRepository{
		MemoryCartRepository: f.carts,
		started:              make(chan struct{}),
		release:              make(chan struct{}),
	}
	require.NoError(t, f.carts.SaveCart(context.Background(), &models.Cart{
		UserID: "u1",
		Lines:  []models.CartLine{{ProductID: a.ID, Name: a.Name, Price: a.Price, Quantity: 2}},
	}))
	svc := services.NewCartService(repo, f.products, nil, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.View(firstCtx, "u1")
		firstErr <- err
	}()
	<-repo.started

	type result struct {
		view *models.CartView
		err  error
	}
	second := make(chan result, 1)
	go func() {
		view, err := svc.View(context.Background(), "u1")
		second <- result{view, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(repo.release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 2, res.view.ItemCount)
}
