package handlers

import (
	"fmt"

	"tokocart/internal/middleware"
	"tokocart/internal/services"
	"tokocart/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	checkout *services.CheckoutService
	service  *services.OrderService
	validate *validator.Validate
	log      *logger.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(checkout *services.CheckoutService, service *services.OrderService, log *logger.Logger) *OrderHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &OrderHandler{
		checkout: checkout,
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the order routes. router must run AuthRequired; the status
// route additionally requires an admin.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Put("/:id/status", middleware.AdminOnly(), h.HandleUpdateOrderStatus)
}

// HandleGetOrders lists the caller's orders, or every order for admins.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	orders, err := h.service.ListOrders(c.UserContext(), principal)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	orderID := c.Params("id")
	order, err := h.service.GetOrder(c.UserContext(), principal, orderID)
	if err != nil {
		return respondError(c, h.log, fmt.Sprintf("Order with ID %s not available", orderID), err)
	}
	return c.JSON(order)
}

// HandleCreateOrder checks out the caller's cart. Lines come from the cart, never from
// the request body.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req services.CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body", err)
		}
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	order, err := h.checkout.Checkout(c.UserContext(), principal, req)
	if err != nil {
		return respondError(c, h.log, "Order creation failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// UpdateStatusRequest is the body of PUT /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus moves an order to a new status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body for status update", err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), orderID, req.Status)
	if err != nil {
		return respondError(c, h.log, "Order status update failed", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, order.Status),
		"order":   order,
	})
}
