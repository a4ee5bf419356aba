package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tokocart/internal/models"

	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
type MemoryOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

func cloneOrder(o models.Order) models.Order {
	lines := make([]models.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}

// List returns the matching orders, newest first.
func (r *MemoryOrderRepository) List(_ context.Context, filter OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// GetByID returns an order by its ID.
func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrDuplicate)
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Lines {
		order.Lines[i].ID = uint(i + 1)
		order.Lines[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// UpdateStatus swaps the status if it still equals from.
func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	if order.Status != from {
		return nil, fmt.Errorf("order %s is %s, not %s: %w", id, order.Status, from, ErrStatusConflict)
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	out := cloneOrder(order)
	return &out, nil
}
