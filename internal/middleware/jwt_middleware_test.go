package middleware_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"tokocart/internal/middleware"
	"tokocart/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticValidator map[string]models.Principal

func (v staticValidator) ValidateToken(token string) (models.Principal, error) {
	p, ok := v[token]
	if !ok {
		return models.Principal{}, errors.New("token is expired")
	}
	return p, nil
}

func newTestApp() *fiber.App {
	validator := staticValidator{
		"user-token":  {UserID: "u1", Username: "user", Role: models.RoleUser},
		"admin-token": {UserID: "a1", Username: "admin", Role: models.RoleAdmin},
	}
	app := fiber.New()
	api := app.Group("/", middleware.AuthRequired(validator, nil))
	api.Get("/me", func(c *fiber.Ctx) error {
		p, _ := middleware.PrincipalFrom(c)
		return c.SendString(p.UserID + ":" + c.Locals("username").(string))
	})
	api.Get("/admin", middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", fiber.StatusUnauthorized},
		{"unknown token", "Bearer nope", fiber.StatusUnauthorized},
		{"valid token", "Bearer user-token", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
