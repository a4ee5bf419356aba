package handlers

import (
	"tokocart/internal/middleware"
	"tokocart/internal/services"
	"tokocart/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler exposes the authenticated user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
	log      *logger.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *logger.Logger) *CartHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the cart routes. router must run AuthRequired.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleView)
	cartRoutes.Post("/", h.HandleAddLine)
	cartRoutes.Delete("/", h.HandleClear)
	cartRoutes.Put("/:productId", h.HandleSetQuantity)
	cartRoutes.Delete("/:productId", h.HandleRemoveLine)
}

// AddLineRequest is the body of POST /cart. A missing quantity means one.
type AddLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

// SetQuantityRequest is the body of PUT /cart/:productId.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (h *CartHandler) userID(c *fiber.Ctx) (string, bool) {
	principal, ok := middleware.PrincipalFrom(c)
	return principal.UserID, ok && principal.UserID != ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Authentication required",
	})
}

// HandleView returns the cart with its derived total and item count.
func (h *CartHandler) HandleView(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return unauthorized(c)
	}
	view, err := h.service.View(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve cart", err)
	}
	return c.JSON(view)
}

// HandleAddLine adds a product to the cart or raises the quantity of its line.
func (h *CartHandler) HandleAddLine(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return unauthorized(c)
	}
	var req AddLineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.service.AddLine(c.UserContext(), userID, req.ProductID, quantity)
	if err != nil {
		return respondError(c, h.log, "Could not add product to cart", err)
	}
	return c.JSON(view)
}

// HandleSetQuantity overwrites the quantity of a line. Zero or less removes it.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return unauthorized(c)
	}
	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	view, err := h.service.SetLineQuantity(c.UserContext(), userID, c.Params("productId"), *req.Quantity)
	if err != nil {
		return respondError(c, h.log, "Could not update cart", err)
	}
	return c.JSON(view)
}

// HandleRemoveLine drops a product from the cart.
func (h *CartHandler) HandleRemoveLine(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return unauthorized(c)
	}
	view, err := h.service.RemoveLine(c.UserContext(), userID, c.Params("productId"))
	if err != nil {
		return respondError(c, h.log, "Could not remove product from cart", err)
	}
	return c.JSON(view)
}

// HandleClear empties the cart.
func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	userID, ok := h.userID(c)
	if !ok {
		return unauthorized(c)
	}
	view, err := h.service.Clear(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, "Could not clear cart", err)
	}
	return c.JSON(view)
}
