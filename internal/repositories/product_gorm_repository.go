package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tokocart/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return q
}

// List retrieves one page of products from the database.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	q := r.filtered(ctx, filter).Order("created_at DESC").Order("id ASC").Offset(filter.offset())
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return findProduct(r.db.WithContext(ctx), id)
}

func findProduct(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product with ID %s: %w", product.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites the descriptive fields and price of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("name", "description", "price", "category", "image", "updated_at").
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

// SetStock overwrites the stock level.
func (r *GORMProductRepository) SetStock(ctx context.Context, id string, stock int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      stock,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return nil
}

// Categories returns the distinct categories in use.
func (r *GORMProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("category <> ''").
		Distinct().
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	sort.Strings(categories)
	return categories, nil
}

// DecrementStock issues a single conditional UPDATE so the floor check and the write are
// one statement in the database. The re-read shares the transaction: if it fails, the
// decrement is rolled back and the caller sees a failure with stock untouched.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id string, amount int) (*models.Product, error) {
	var product *models.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", id, amount).
			Updates(map[string]interface{}{
				"stock":      gorm.Expr("stock - ?", amount),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to decrement stock for product %s: %w", id, res.Error)
		}

		current, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return &InsufficientStockError{ProductID: id, Name: current.Name, Requested: amount, Available: current.Stock}
		}
		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// RestoreStock adds amount back to the product's stock.
func (r *GORMProductRepository) RestoreStock(ctx context.Context, id string, amount int) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to restore stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return nil
}
