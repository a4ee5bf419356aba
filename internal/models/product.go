package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the store.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Stock       int             `json:"stock" gorm:"not null;check:stock >= 0" validate:"gte=0"`
	Category    string          `json:"category" gorm:"index;type:varchar(64)" validate:"required,max=64"`
	Image       string          `json:"image" validate:"omitempty,max=500"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PredefinedCategories are offered to catalog editors even before any product uses them.
var PredefinedCategories = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Books",
	"Sports",
	"Beauty",
	"Toys",
	"Automotive",
	"Health",
	"Jewelry",
}

// PlaceholderImage is used for products created without an image.
const PlaceholderImage = "https://via.placeholder.com/300x200?text=No+Image"
