package repositories

import (
	"fmt"

	"tokocart/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the GORM repositories use.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderLine{},
		&cartRecord{},
		&cartLineRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
