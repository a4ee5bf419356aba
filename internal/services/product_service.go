package services

import (
	"context"
	"fmt"
	"sort"

	"tokocart/internal/models"
	"tokocart/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// ProductUpdate holds the fields an admin may change. Nil fields are left as they are.
type ProductUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=3,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Category    *string          `json:"category" validate:"omitempty,max=64"`
	Image       *string          `json:"image" validate:"omitempty,max=500"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns one page of the catalog. Page defaults to 1 and limit to 20.
func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return &ProductPage{
		Products:   products,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if !product.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than zero", ErrValidation)
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	product.Price = product.Price.Round(2)
	if product.Image == "" {
		product.Image = models.PlaceholderImage
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct applies update to the stored product and returns the result. Price
// changes never touch existing cart lines or orders; those keep their snapshots.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, update ProductUpdate) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		if !update.Price.IsPositive() {
			return nil, fmt.Errorf("%w: price must be greater than zero", ErrValidation)
		}
		product.Price = update.Price.Round(2)
	}
	if update.Stock != nil && *update.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	if update.Category != nil {
		product.Category = *update.Category
	}
	if update.Image != nil {
		product.Image = *update.Image
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	if update.Stock != nil {
		if err := s.repo.SetStock(ctx, id, *update.Stock); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Categories returns the predefined categories merged with those in use, sorted.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	used, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(used)+len(models.PredefinedCategories))
	all := make([]string, 0, len(used)+len(models.PredefinedCategories))
	for _, list := range [][]string{models.PredefinedCategories, used} {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			all = append(all, c)
		}
	}
	sort.Strings(all)
	return all, nil
}
