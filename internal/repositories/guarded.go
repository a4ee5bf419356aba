package repositories

import (
	"context"

	"tokocart/internal/models"
	"tokocart/pkg/logger"
	"tokocart/pkg/storeguard"
)

// NewStoreGuard builds a guard that treats this package's answer errors as permanent.
func NewStoreGuard(cfg storeguard.Config, log *logger.Logger) *storeguard.Guard {
	cfg.Permanent = IsStoreAnswer
	return storeguard.New(cfg, log)
}

// GuardedProductRepository retries reads through the guard. DecrementStock and
// RestoreStock go through the breaker once; repeating them after an ambiguous failure
// could move stock twice.
type GuardedProductRepository struct {
	next  ProductRepository
	guard *storeguard.Guard
}

// NewGuardedProductRepository wraps next with guard.
func NewGuardedProductRepository(next ProductRepository, guard *storeguard.Guard) *GuardedProductRepository {
	return &GuardedProductRepository{next: next, guard: guard}
}

type productPage struct {
	products []models.Product
	total    int64
}

func (r *GuardedProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	page, err := storeguard.Retry(ctx, r.guard, "products.list", func(ctx context.Context) (productPage, error) {
		products, total, err := r.next.List(ctx, filter)
		return productPage{products: products, total: total}, err
	})
	return page.products, page.total, err
}

func (r *GuardedProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return storeguard.Retry(ctx, r.guard, "products.get", func(ctx context.Context) (*models.Product, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *GuardedProductRepository) Create(ctx context.Context, product *models.Product) error {
	return storeguard.OnceErr(ctx, r.guard, "products.create", func(ctx context.Context) error {
		return r.next.Create(ctx, product)
	})
}

func (r *GuardedProductRepository) Update(ctx context.Context, product *models.Product) error {
	return storeguard.RetryErr(ctx, r.guard, "products.update", func(ctx context.Context) error {
		return r.next.Update(ctx, product)
	})
}

func (r *GuardedProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	return storeguard.RetryErr(ctx, r.guard, "products.set_stock", func(ctx context.Context) error {
		return r.next.SetStock(ctx, id, stock)
	})
}

func (r *GuardedProductRepository) Delete(ctx context.Context, id string) error {
	return storeguard.OnceErr(ctx, r.guard, "products.delete", func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	})
}

func (r *GuardedProductRepository) Categories(ctx context.Context) ([]string, error) {
	return storeguard.Retry(ctx, r.guard, "products.categories", r.next.Categories)
}

func (r *GuardedProductRepository) DecrementStock(ctx context.Context, id string, amount int) (*models.Product, error) {
	return storeguard.Once(ctx, r.guard, "products.decrement_stock", func(ctx context.Context) (*models.Product, error) {
		return r.next.DecrementStock(ctx, id, amount)
	})
}

func (r *GuardedProductRepository) RestoreStock(ctx context.Context, id string, amount int) error {
	return storeguard.OnceErr(ctx, r.guard, "products.restore_stock", func(ctx context.Context) error {
		return r.next.RestoreStock(ctx, id, amount)
	})
}

// GuardedOrderRepository wraps an OrderRepository. Create runs once.
type GuardedOrderRepository struct {
	next  OrderRepository
	guard *storeguard.Guard
}

// NewGuardedOrderRepository wraps next with guard.
func NewGuardedOrderRepository(next OrderRepository, guard *storeguard.Guard) *GuardedOrderRepository {
	return &GuardedOrderRepository{next: next, guard: guard}
}

func (r *GuardedOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	return storeguard.Retry(ctx, r.guard, "orders.list", func(ctx context.Context) ([]models.Order, error) {
		return r.next.List(ctx, filter)
	})
}

func (r *GuardedOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return storeguard.Retry(ctx, r.guard, "orders.get", func(ctx context.Context) (*models.Order, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *GuardedOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return storeguard.OnceErr(ctx, r.guard, "orders.create", func(ctx context.Context) error {
		return r.next.Create(ctx, order)
	})
}

// UpdateStatus is a compare-and-swap and may be retried.
func (r *GuardedOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	return storeguard.Retry(ctx, r.guard, "orders.update_status", func(ctx context.Context) (*models.Order, error) {
		return r.next.UpdateStatus(ctx, id, from, to)
	})
}

// GuardedCartRepository wraps a CartRepository. Every cart write replaces the whole
// document, so all of them are retried.
type GuardedCartRepository struct {
	next  CartRepository
	guard *storeguard.Guard
}

// NewGuardedCartRepository wraps next with guard.
func NewGuardedCartRepository(next CartRepository, guard *storeguard.Guard) *GuardedCartRepository {
	return &GuardedCartRepository{next: next, guard: guard}
}

func (r *GuardedCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	return storeguard.Retry(ctx, r.guard, "carts.get", func(ctx context.Context) (*models.Cart, error) {
		return r.next.GetCart(ctx, userID)
	})
}

func (r *GuardedCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	return storeguard.RetryErr(ctx, r.guard, "carts.save", func(ctx context.Context) error {
		return r.next.SaveCart(ctx, cart)
	})
}

func (r *GuardedCartRepository) DeleteCart(ctx context.Context, userID string) error {
	return storeguard.RetryErr(ctx, r.guard, "carts.delete", func(ctx context.Context) error {
		return r.next.DeleteCart(ctx, userID)
	})
}

// GuardedUserRepository wraps a UserRepository.
type GuardedUserRepository struct {
	next  UserRepository
	guard *storeguard.Guard
}

// NewGuardedUserRepository wraps next with guard.
func NewGuardedUserRepository(next UserRepository, guard *storeguard.Guard) *GuardedUserRepository {
	return &GuardedUserRepository{next: next, guard: guard}
}

func (r *GuardedUserRepository) Create(ctx context.Context, user *models.User) error {
	return storeguard.OnceErr(ctx, r.guard, "users.create", func(ctx context.Context) error {
		return r.next.Create(ctx, user)
	})
}

func (r *GuardedUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return storeguard.Retry(ctx, r.guard, "users.get_by_username", func(ctx context.Context) (*models.User, error) {
		return r.next.GetByUsername(ctx, username)
	})
}

func (r *GuardedUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return storeguard.Retry(ctx, r.guard, "users.get_by_email", func(ctx context.Context) (*models.User, error) {
		return r.next.GetByEmail(ctx, email)
	})
}

func (r *GuardedUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return storeguard.Retry(ctx, r.guard, "users.get", func(ctx context.Context) (*models.User, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *GuardedUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return storeguard.RetryErr(ctx, r.guard, "users.update_profile", func(ctx context.Context) error {
		return r.next.UpdateProfile(ctx, user)
	})
}

func (r *GuardedUserRepository) Count(ctx context.Context) (int64, error) {
	return storeguard.Retry(ctx, r.guard, "users.count", r.next.Count)
}
