package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokocart/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRecord struct {
	UserID    string           `gorm:"primaryKey;type:varchar(36)"`
	Lines     []cartLineRecord `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartRecord) TableName() string { return "carts" }

type cartLineRecord struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    string          `gorm:"type:varchar(36);uniqueIndex:idx_cart_lines_user_product"`
	ProductID string          `gorm:"type:varchar(36);uniqueIndex:idx_cart_lines_user_product"`
	Position  int             `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)"`
	Name      string          `gorm:"type:varchar(100)"`
	Image     string
	AddedAt   time.Time
}

func (cartLineRecord) TableName() string { return "cart_lines" }

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetCart loads the cart row and its lines in position order.
func (r *GORMCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var rec cartRecord
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&rec, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrCartNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}

	cart := &models.Cart{
		UserID:    rec.UserID,
		Lines:     make([]models.CartLine, 0, len(rec.Lines)),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	for _, l := range rec.Lines {
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Name:      l.Name,
			Image:     l.Image,
			AddedAt:   l.AddedAt,
		})
	}
	return cart, nil
}

// SaveCart upserts the cart row and rewrites its lines in one transaction.
func (r *GORMCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := cartRecord{UserID: cart.UserID, CreatedAt: cart.CreatedAt, UpdatedAt: cart.UpdatedAt}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Omit("Lines").Create(&rec).Error
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", cart.UserID).Delete(&cartLineRecord{}).Error; err != nil {
			return err
		}
		if len(cart.Lines) == 0 {
			return nil
		}

		lines := make([]cartLineRecord, 0, len(cart.Lines))
		for i, l := range cart.Lines {
			lines = append(lines, cartLineRecord{
				UserID:    cart.UserID,
				ProductID: l.ProductID,
				Position:  i,
				Quantity:  l.Quantity,
				Price:     l.Price,
				Name:      l.Name,
				Image:     l.Image,
				AddedAt:   l.AddedAt,
			})
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save cart for user %s: %w", cart.UserID, err)
	}
	return nil
}

// DeleteCart removes the cart row and its lines.
func (r *GORMCartRepository) DeleteCart(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&cartLineRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&cartRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete cart for user %s: %w", userID, err)
	}
	return nil
}
