package services

import (
	"errors"
	"fmt"

	"tokocart/internal/repositories"
)

// Store-level errors surface unchanged through the services.
var (
	ErrNotFound          = repositories.ErrNotFound
	ErrInsufficientStock = repositories.ErrInsufficientStock
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrLineNotFound       = fmt.Errorf("product not in cart: %w", repositories.ErrNotFound)
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrIllegalTransition  = errors.New("illegal order status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation failed")
)
