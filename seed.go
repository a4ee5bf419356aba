package main

import (
	"context"
	"errors"

	"tokocart/internal/models"
	"tokocart/internal/repositories"
	"tokocart/internal/services"
	"tokocart/pkg/logger"

	"github.com/shopspring/decimal"
)

const demoPassword = "password123"

var demoUsers = []models.User{
	{Name: "Admin User", Username: "admin", Email: "admin@example.com", Role: models.RoleAdmin, Address: "123 Admin Street", Phone: "123-456-7890"},
	{Name: "Regular User", Username: "user", Email: "user@example.com", Role: models.RoleUser, Address: "456 User Avenue", Phone: "987-654-3210"},
}

func demoProducts() []models.Product {
	p := func(name, description, price, category string, stock int, image string) models.Product {
		return models.Product{
			Name:        name,
			Description: description,
			Price:       decimal.RequireFromString(price),
			Category:    category,
			Stock:       stock,
			Image:       "https://via.placeholder.com/300x200?text=" + image,
		}
	}
	return []models.Product{
		p("Wireless Bluetooth Earbuds", "High-quality wireless earbuds with noise cancellation and 24hr battery life", "49.99", "Electronics", 50, "Wireless+Earbuds"),
		p("Cotton T-Shirt", "Comfortable 100% cotton t-shirt available in multiple colors", "15.99", "Clothing", 100, "Cotton+T-Shirt"),
		p("Smart Watch", "Feature-rich smartwatch with heart rate monitoring and GPS", "99.99", "Electronics", 25, "Smart+Watch"),
		p("Desk Lamp", "Modern LED desk lamp with adjustable brightness and color temperature", "29.99", "Home & Garden", 75, "Desk+Lamp"),
		p("Running Shoes", "Lightweight running shoes with cushioning and breathable mesh", "79.99", "Sports", 40, "Running+Shoes"),
		p("Coffee Maker", "Programmable coffee maker with thermal carafe and built-in grinder", "89.99", "Home & Garden", 30, "Coffee+Maker"),
		p("Fantasy Novel", "Bestselling fantasy novel with epic adventure storyline", "12.99", "Books", 80, "Fantasy+Novel"),
		p("Yoga Mat", "Non-slip yoga mat with carrying strap and alignment lines", "24.99", "Sports", 60, "Yoga+Mat"),
	}
}

// seedDemoData creates the demo accounts that are missing and fills an empty catalog.
func seedDemoData(ctx context.Context, auth *services.AuthService, users repositories.UserRepository, products *services.ProductService, log *logger.Logger) error {
	for _, u := range demoUsers {
		if _, err := users.GetByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		user := u
		user.Password = demoPassword
		if err := auth.RegisterUser(ctx, &user); err != nil {
			return err
		}
		log.Info("demo user created", "email", user.Email, "role", user.Role)
	}

	page, err := products.ListProducts(ctx, repositories.ProductFilter{Limit: 1})
	if err != nil {
		return err
	}
	if page.Total > 0 {
		log.Debug("catalog already populated, skipping demo products", "products", page.Total)
		return nil
	}
	for _, p := range demoProducts() {
		product := p
		if err := products.CreateProduct(ctx, &product); err != nil {
			return err
		}
	}
	log.Info("demo products created", "count", len(demoProducts()))
	return nil
}
