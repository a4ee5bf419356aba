package services

import (
	"encoding/json"
	"time"

	"tokocart/internal/models"
	"tokocart/pkg/logger"

	"github.com/shopspring/decimal"
)

// Routing keys on the orders exchange.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher sends a message to an exchange. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderCreatedEvent is the body of order.created.
type OrderCreatedEvent struct {
	OrderID     string             `json:"orderId"`
	UserID      string             `json:"userId"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Products    []models.OrderLine `json:"products"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// OrderStatusChangedEvent is the body of order.status_changed.
type OrderStatusChangedEvent struct {
	OrderID   string             `json:"orderId"`
	UserID    string             `json:"userId"`
	From      models.OrderStatus `json:"from"`
	To        models.OrderStatus `json:"to"`
	ChangedAt time.Time          `json:"changedAt"`
}

// eventSink publishes best effort. A nil publisher disables events.
type eventSink struct {
	publisher EventPublisher
	exchange  string
	log       *logger.Logger
}

func (s eventSink) publish(routingKey string, event interface{}) {
	if s.publisher == nil {
		s.log.Debug("event publisher not configured, skipping event", "routing_key", routingKey)
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal event", "routing_key", routingKey, "error", err)
		return
	}
	if err := s.publisher.Publish(s.exchange, routingKey, body); err != nil {
		s.log.Warn("failed to publish event", "routing_key", routingKey, "error", err)
		return
	}
	s.log.Debug("published event", "routing_key", routingKey)
}
