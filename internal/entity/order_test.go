package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("paid").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestShippingAddressColumnRoundTrip(t *testing.T) {
	addr := ShippingAddress{Name: "Ada", Email: "ada@example.com", Address: "1 Loop St", City: "London", Zip: "N1", Phone: "555"}

	v, err := addr.Value()
	require.NoError(t, err)

	var fromString, fromBytes ShippingAddress
	require.NoError(t, fromString.Scan(v))
	require.NoError(t, fromBytes.Scan([]byte(v.(string))))
	assert.Equal(t, addr, fromString)
	assert.Equal(t, addr, fromBytes)

	assert.Error(t, fromBytes.Scan(42))
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Price: decimal.RequireFromString("19.99"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("59.97").Equal(item.Subtotal()))
}
