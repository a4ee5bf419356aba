package models

import "time"

// Role gates administrative operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user of the store.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash once stored
	Role      Role      `json:"role" gorm:"type:varchar(16);default:user"`
	Address   string    `json:"address" validate:"omitempty,max=255"`
	Phone     string    `json:"phone" gorm:"type:varchar(32)" validate:"omitempty,max=32"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Principal is the authenticated identity a request runs under.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

// IsAdmin reports whether the principal may run administrative operations.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
