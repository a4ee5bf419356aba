package repositories

import (
	"context"

	"tokocart/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	// UpdateProfile writes name, email, address and phone. Credentials and role are untouched.
	UpdateProfile(ctx context.Context, user *models.User) error
}
