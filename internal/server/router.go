// Package server assembles the fiber application from the handlers.
package server

import (
	"errors"
	"time"

	"tokocart/internal/handlers"
	"tokocart/internal/middleware"
	"tokocart/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps are the pieces the router wires together.
type Deps struct {
	Tokens   middleware.TokenValidator
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Orders   *handlers.OrderHandler
	Log      *logger.Logger

	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// NewApp builds the fiber app with every route under /api/v1 plus /health.
func NewApp(deps Deps) *fiber.App {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "toko",
		ErrorHandler: errorHandler(log),
	})
	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1")

	// Public routes
	deps.Auth.RegisterRoutes(apiV1)
	deps.Products.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protected := apiV1.Group("", middleware.AuthRequired(deps.Tokens, log))
	deps.Auth.RegisterProfileRoutes(protected)
	deps.Cart.RegisterRoutes(protected)
	deps.Orders.RegisterRoutes(protected)

	admin := protected.Group("/admin", middleware.AdminOnly())
	deps.Products.RegisterAdminRoutes(admin)

	return app
}

func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		if code == fiber.StatusInternalServerError {
			log.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
			return c.Status(code).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}
		return c.Status(code).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}
