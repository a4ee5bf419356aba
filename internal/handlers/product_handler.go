package handlers

import (
	"fmt"

	"tokocart/internal/models"
	"tokocart/internal/repositories"
	"tokocart/internal/services"
	"tokocart/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *logger.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *logger.Logger) *ProductHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/categories", h.HandleCategories)
}

// RegisterAdminRoutes registers the catalog editing routes. router must already be
// restricted to admins.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleListProducts lists products filtered by ?category= and ?search=, paged by ?page= and ?limit=.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 0),
	}
	page, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, fmt.Sprintf("Product with ID %s not available", id), err)
	}
	return c.JSON(product)
}

// HandleCategories lists every predefined and in-use category.
func (h *ProductHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

// ProductRequest is the body of a product creation.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required,max=64"`
	Image       string          `json:"image" validate:"omitempty,max=500"`
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if handled, err := validateBody(c, h.validate, req); handled {
		return err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
	}
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return respondError(c, h.log, "Could not create product", err)
	}
	h.log.Info("product created", "product_id", product.ID, "name", product.Name)
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	var update services.ProductUpdate
	if err := c.BodyParser(&update); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if handled, err := validateBody(c, h.validate, update); handled {
		return err
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, update)
	if err != nil {
		return respondError(c, h.log, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, h.log, "Could not delete product", err)
	}
	h.log.Info("product deleted", "product_id", id)
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", id),
	})
}
