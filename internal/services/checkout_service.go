package services

import (
	"context"
	"fmt"
	"strings"

	"tokocart/internal/models"
	"tokocart/internal/repositories"
	"tokocart/pkg/logger"
	"tokocart/pkg/rabbitmq"

	"github.com/google/uuid"
)

const (
	DefaultShippingAddress = "Default Address"
	DefaultPaymentMethod   = "credit card"
)

// CheckoutRequest carries the order details that do not come from the cart.
type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress" validate:"omitempty,max=255"`
	PaymentMethod   string `json:"paymentMethod" validate:"omitempty,max=64"`
}

// CheckoutService turns a user's cart into an order. It is the only code path that
// decrements stock.
type CheckoutService struct {
	carts    *CartService
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	events   eventSink
	log      *logger.Logger
}

// NewCheckoutService creates a new CheckoutService. A nil publisher disables events.
func NewCheckoutService(carts *CartService, products repositories.ProductRepository, orders repositories.OrderRepository, publisher EventPublisher, log *logger.Logger) *CheckoutService {
	if log == nil {
		log = logger.NewNop()
	}
	return &CheckoutService{
		carts:    carts,
		products: products,
		orders:   orders,
		events:   eventSink{publisher: publisher, exchange: rabbitmq.ExchangeOrders, log: log},
		log:      log,
	}
}

// Checkout validates every cart line against current stock, decrements stock line by
// line with the store's conditional decrement, and records the order. Either every line
// is committed and the order exists, or stock is left as it was.
func (s *CheckoutService) Checkout(ctx context.Context, principal models.Principal, req CheckoutRequest) (*models.Order, error) {
	userID := principal.UserID
	unlock := s.carts.lockCart(userID)
	defer unlock()

	cart, err := s.carts.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	for _, line := range cart.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, &repositories.InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}
	}

	committed := make([]models.OrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		product, err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			s.log.Info("stock decrement failed, releasing committed lines",
				"user_id", userID, "product_id", line.ProductID, "error", err)
			s.release(ctx, committed)
			return nil, err
		}
		committed = append(committed, models.OrderLine{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Lines:           committed,
		TotalAmount:     models.SumOrderLines(committed),
		Status:          models.OrderStatusPending,
		ShippingAddress: orDefault(req.ShippingAddress, DefaultShippingAddress),
		PaymentMethod:   orDefault(req.PaymentMethod, DefaultPaymentMethod),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, committed)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.carts.clearLocked(ctx, userID); err != nil {
		s.log.Error("failed to clear cart after checkout", "user_id", userID, "order_id", order.ID, "error", err)
	}

	s.log.Info("order placed", "order_id", order.ID, "user_id", userID, "total", order.TotalAmount.StringFixed(2))
	s.events.publish(EventOrderCreated, OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Products:    order.Lines,
		CreatedAt:   order.CreatedAt,
	})
	return order, nil
}

// release gives back stock taken by a checkout that did not complete. It runs even when
// the request context is already cancelled.
func (s *CheckoutService) release(ctx context.Context, lines []models.OrderLine) {
	ctx = context.WithoutCancel(ctx)
	for _, l := range lines {
		if err := s.products.RestoreStock(ctx, l.ProductID, l.Quantity); err != nil {
			s.log.Error("failed to restore stock", "product_id", l.ProductID, "quantity", l.Quantity, "error", err)
		}
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
