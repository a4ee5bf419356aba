package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product in a user's cart. Price, Name and Image are snapshots taken
// when the line was first added and are not refreshed on later catalog changes.
type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Subtotal returns price times quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the per-user collection of lines. It holds at most one line per product.
type Cart struct {
	UserID    string     `json:"userId"`
	Lines     []CartLine `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Remove drops the line for productID and reports whether one was present.
func (c *Cart) Remove(productID string) bool {
	idx := c.Find(productID)
	if idx < 0 {
		return false
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	return true
}

// Total is the sum of line subtotals rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total.Round(2)
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// View computes the outward representation of the cart.
func (c *Cart) View() *CartView {
	items := make([]CartLine, len(c.Lines))
	copy(items, c.Lines)
	return &CartView{
		UserID:    c.UserID,
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
	}
}

// CartView is the cart as returned to clients. Total and ItemCount are derived and never stored.
type CartView struct {
	UserID    string          `json:"userId"`
	Items     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}
