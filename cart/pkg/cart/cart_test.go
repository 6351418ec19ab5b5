package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAddMergesExistingLine(t *testing.T) {
	productId := uuid.New()
	c := Cart{UserId: uuid.New(), Lines: []Line{}}

	c.Add(Line{ProductId: productId, Name: "widget", UnitPrice: decimal.NewFromInt(10), Quantity: 2})
	c.Add(Line{ProductId: productId, Name: "widget", UnitPrice: decimal.NewFromInt(10), Quantity: 3})

	assert.Len(t, c.Lines, 1, "same product should never produce a second line")
	assert.EqualValues(t, 5, c.QuantityOf(productId))
}

func TestSetQuantity(t *testing.T) {
	kept := uuid.New()
	removed := uuid.New()

	tests := []struct {
		name             string
		quantity         int32
		expectedLines    int
		expectedQuantity int32
	}{
		{name: "positive quantity updates in place", quantity: 7, expectedLines: 2, expectedQuantity: 7},
		{name: "zero removes the line", quantity: 0, expectedLines: 1, expectedQuantity: 0},
		{name: "negative removes the line", quantity: -3, expectedLines: 1, expectedQuantity: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cart{UserId: uuid.New(), Lines: []Line{
				{ProductId: kept, UnitPrice: decimal.NewFromInt(10), Quantity: 1},
				{ProductId: removed, UnitPrice: decimal.NewFromInt(5), Quantity: 2},
			}}

			c.SetQuantity(removed, tt.quantity)

			assert.Len(t, c.Lines, tt.expectedLines)
			assert.EqualValues(t, tt.expectedQuantity, c.QuantityOf(removed))
			assert.EqualValues(t, 1, c.QuantityOf(kept), "other lines should be untouched")
		})
	}
}

func TestSetQuantityUnknownProductIsNoop(t *testing.T) {
	c := Cart{UserId: uuid.New(), Lines: []Line{
		{ProductId: uuid.New(), UnitPrice: decimal.NewFromInt(10), Quantity: 1},
	}}

	c.SetQuantity(uuid.New(), 5)

	assert.Len(t, c.Lines, 1)
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		lines    []Line
		expected decimal.Decimal
	}{
		{name: "empty cart totals zero", lines: []Line{}, expected: decimal.Zero},
		{
			name: "total sums unit price times quantity",
			lines: []Line{
				{ProductId: uuid.New(), UnitPrice: decimal.NewFromInt(10), Quantity: 2},
				{ProductId: uuid.New(), UnitPrice: decimal.RequireFromString("2.50"), Quantity: 2},
			},
			expected: decimal.NewFromInt(25),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Cart{UserId: uuid.New(), Lines: tt.lines}
			assert.True(t, tt.expected.Equal(c.Total()),
				"total should be %s got %s", tt.expected, c.Total())
		})
	}
}

func TestAvailableStock(t *testing.T) {
	productId := uuid.New()
	c := Cart{UserId: uuid.New(), Lines: []Line{
		{ProductId: productId, UnitPrice: decimal.NewFromInt(10), Quantity: 4},
	}}

	assert.EqualValues(t, 6, AvailableStock(10, c, productId))
	assert.EqualValues(t, 0, AvailableStock(4, c, productId))
	assert.EqualValues(t, -1, AvailableStock(3, c, productId), "oversubscribed cart may go negative")
	assert.EqualValues(t, 10, AvailableStock(10, c, uuid.New()), "absent product reserves nothing")
}
