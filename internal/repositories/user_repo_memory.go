package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tokocart/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a user. Username and email are unique.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Username, ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) find(match func(models.User) bool, desc string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with %s: %w", desc, ErrUserNotFound)
}

// GetByUsername returns the user with the given username.
func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username }, "username "+username)
}

// GetByEmail returns the user with the given email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }, "email "+email)
}

// GetByID returns the user with the given ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id }, "id "+id)
}

// UpdateProfile overwrites the contact fields of an existing user.
func (r *MemoryUserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user with id %s: %w", user.ID, ErrUserNotFound)
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Address = user.Address
	stored.Phone = user.Phone
	stored.UpdatedAt = time.Now()
	user.UpdatedAt = stored.UpdatedAt
	r.users[user.ID] = stored
	return nil
}

// Count returns the number of users.
func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
