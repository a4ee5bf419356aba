package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokocart/internal/models"
	"tokocart/internal/repositories"
	"tokocart/pkg/logger"
	"tokocart/pkg/rabbitmq"
)

// OrderService handles reads and status changes of placed orders.
type OrderService struct {
	orders repositories.OrderRepository
	events eventSink
	log    *logger.Logger
}

// NewOrderService creates a new OrderService. A nil publisher disables events.
func NewOrderService(orders repositories.OrderRepository, publisher EventPublisher, log *logger.Logger) *OrderService {
	if log == nil {
		log = logger.NewNop()
	}
	return &OrderService{
		orders: orders,
		events: eventSink{publisher: publisher, exchange: rabbitmq.ExchangeOrders, log: log},
		log:    log,
	}
}

// ListOrders returns every order for admins and the principal's own orders otherwise,
// newest first.
func (s *OrderService) ListOrders(ctx context.Context, principal models.Principal) ([]models.Order, error) {
	filter := repositories.OrderFilter{UserID: principal.UserID}
	if principal.IsAdmin() {
		filter.UserID = ""
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrder returns one order. Orders of other users are reported as not found unless the
// principal is an admin.
func (s *OrderService) GetOrder(ctx context.Context, principal models.Principal, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && order.UserID != principal.UserID {
		return nil, fmt.Errorf("order with ID %s: %w", id, repositories.ErrOrderNotFound)
	}
	return order, nil
}

// UpdateOrderStatus moves an order along the status graph. Only forward moves and
// cancellation of a non-terminal order are accepted.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, order.Status, next)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		if errors.Is(err, repositories.ErrStatusConflict) {
			return nil, fmt.Errorf("%w: %v", ErrIllegalTransition, err)
		}
		return nil, err
	}

	s.log.Info("order status changed", "order_id", id, "from", order.Status, "to", next)
	s.events.publish(EventOrderStatusChanged, OrderStatusChangedEvent{
		OrderID:   updated.ID,
		UserID:    updated.UserID,
		From:      order.Status,
		To:        next,
		ChangedAt: time.Now(),
	})
	return updated, nil
}
