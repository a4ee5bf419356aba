package middleware

import (
	"strings"

	"tokocart/internal/models"
	"tokocart/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "principal"

// TokenValidator turns a bearer token into the principal it was issued for.
// *services.AuthService implements it.
type TokenValidator interface {
	ValidateToken(token string) (models.Principal, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		principal, err := validator.ValidateToken(parts[1])
		if err != nil {
			log.Debug("JWT validation failed", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(principalKey, principal)
		c.Locals("user_id", principal.UserID)
		c.Locals("username", principal.Username)
		return c.Next()
	}
}

// AdminOnly rejects principals without the admin role. It must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if !principal.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by AuthRequired.
func PrincipalFrom(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(principalKey).(models.Principal)
	return principal, ok
}
