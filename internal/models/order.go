package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions is the forward-only status graph. Cancellation is allowed from every
// non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ParseOrderStatus returns the status named by s and whether it is one of the known values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	_, ok := orderTransitions[status]
	return status, ok
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// OrderLine represents a single item within an order.
type OrderLine struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	OrderID   string          `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string          `json:"productId" gorm:"type:varchar(36)"`
	Name      string          `json:"name" gorm:"type:varchar(100)"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"` // Price at the time of purchase
}

// Order represents a customer order. Everything except Status is fixed at creation.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"userId" gorm:"index;type:varchar(36)"`
	Lines           []OrderLine     `json:"products" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2)"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16);index"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"type:varchar(64)"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// SumOrderLines totals price times quantity over lines, rounded to cents.
func SumOrderLines(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}
