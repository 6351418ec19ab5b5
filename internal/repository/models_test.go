package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusShipped, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		assert.Equal(
			t,
			tt.allowed,
			tt.from.CanTransitionTo(tt.to),
			"%s -> %s should be allowed=%v",
			tt.from,
			tt.to,
			tt.allowed,
		)
	}
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusShipped.Valid())
	assert.True(t, OrderStatusCancelled.Valid())
	assert.False(t, OrderStatus("refunded").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestNumericDecimalRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "19.99", "1234567890.12", "-3.50"} {
		d := decimal.RequireFromString(raw)
		got := DecimalFromNumeric(NumericFromDecimal(d))
		assert.True(t, d.Equal(got), "%s should round trip, got %s", raw, got)
	}
}
