package handlers

import (
	"errors"
	"fmt"

	"tokocart/internal/services"
	"tokocart/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, services.ErrUserExists):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"message", "error"}. Internal errors are logged and their
// detail is not sent to the client.
func respondError(c *fiber.Ctx, log *logger.Logger, message string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error(message, "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{
			"message": message,
			"error":   "internal server error",
		})
	}
	log.Debug(message, "path", c.Path(), "status", status, "error", err)
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// validateBody runs struct validation and writes a 400 listing every failed field. It
// returns handled=true when a response has been written.
func validateBody(c *fiber.Ctx, validate *validator.Validate, body interface{}) (bool, error) {
	err := validate.Struct(body)
	if err == nil {
		return false, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return true, badRequest(c, "Validation failed", err)
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
