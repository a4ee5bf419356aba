package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokocart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// List retrieves orders from the database.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Preload("Lines", preloadLines).Order("created_at DESC").Order("id ASC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its lines.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Lines", preloadLines).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order and its lines in one transaction.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("order with ID %s: %w", order.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus runs a compare-and-swap on the status column.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}

	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order %s is %s, not %s: %w", id, order.Status, from, ErrStatusConflict)
	}
	return order, nil
}
