package models_test

import (
	"encoding/json"
	"testing"

	"tokocart/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_TotalsAreDerivedFromLines(t *testing.T) {
	cart := &models.Cart{UserID: "u1", Lines: []models.CartLine{
		{ProductID: "a", Quantity: 2, Price: decimal.RequireFromString("10")},
		{ProductID: "b", Quantity: 3, Price: decimal.RequireFromString("0.333")},
	}}

	assert.True(t, decimal.RequireFromString("21.00").Equal(cart.Total()), cart.Total().String())
	assert.Equal(t, 5, cart.ItemCount())

	assert.True(t, cart.Remove("b"))
	assert.False(t, cart.Remove("b"))
	assert.Equal(t, 2, cart.ItemCount())
	assert.Equal(t, -1, cart.Find("b"))
}

func TestCart_ViewJSONShape(t *testing.T) {
	cart := &models.Cart{UserID: "u1"}
	body, err := json.Marshal(cart.View())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, []interface{}{}, decoded["items"])
	assert.Equal(t, float64(0), decoded["total"])
	assert.Equal(t, float64(0), decoded["itemCount"])
}

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		allowed  bool
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{models.OrderStatusConfirmed, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled, true},
		{models.OrderStatusShipped, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusShipped, false},
		{models.OrderStatusShipped, models.OrderStatusConfirmed, false},
		{models.OrderStatusPending, models.OrderStatusPending, false},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}

	assert.True(t, models.OrderStatusDelivered.IsTerminal())
	assert.True(t, models.OrderStatusCancelled.IsTerminal())
	assert.False(t, models.OrderStatusShipped.IsTerminal())

	_, ok := models.ParseOrderStatus("processing")
	assert.False(t, ok)
	status, ok := models.ParseOrderStatus("shipped")
	assert.True(t, ok)
	assert.Equal(t, models.OrderStatusShipped, status)
}

func TestSumOrderLines(t *testing.T) {
	lines := []models.OrderLine{
		{Quantity: 2, Price: decimal.RequireFromString("10")},
		{Quantity: 1, Price: decimal.RequireFromString("5.255")},
	}
	assert.Equal(t, "25.26", models.SumOrderLines(lines).StringFixed(2))
}
