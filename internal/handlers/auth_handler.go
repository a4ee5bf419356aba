package handlers

import (
	"tokocart/internal/middleware"
	"tokocart/internal/models"
	"tokocart/internal/services"
	"tokocart/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterProfileRoutes registers the account routes. router must already require a token.
func (h *AuthHandler) RegisterProfileRoutes(router fiber.Router) {
	router.Get("/profile", h.HandleGetProfile)
	router.Put("/profile", h.HandleUpdateProfile)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Address  string `json:"address" validate:"omitempty,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}

// HandleRegister handles new user registration. The role is never taken from the body.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	user := models.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleUser,
		Address:  req.Address,
		Phone:    req.Phone,
	}
	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		return respondError(c, h.log, "Registration failed", err)
	}

	h.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login. Username may also hold an email
// address; Email is accepted on its own as well.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	token, user, err := h.authService.LoginUser(c.UserContext(), identifier, req.Password)
	if err != nil {
		return respondError(c, h.log, "Authentication failed", err)
	}

	user.Password = ""
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleGetProfile returns the caller's account.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	user, err := h.authService.GetProfile(c.UserContext(), principal.UserID)
	if err != nil {
		return respondError(c, h.log, "Failed to fetch profile", err)
	}
	return c.JSON(user)
}

// HandleUpdateProfile changes the caller's contact fields. Password and role in the body
// are ignored.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var update services.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if handled, err := validateBody(c, h.validate, update); handled {
		return err
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), principal.UserID, update)
	if err != nil {
		return respondError(c, h.log, "Failed to update profile", err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}
