package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one selected product in a cart. Name, Image and UnitPrice are a
// snapshot taken when the product was added, not re-read at render time.
type Line struct {
	ProductId uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int32           `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

// Cart is an ordered sequence of lines, unique by productId. A cart never
// holds a line with quantity below one.
type Cart struct {
	UserId uuid.UUID `json:"userId"`
	Lines  []Line    `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) QuantityOf(productId uuid.UUID) int32 {
	for _, line := range c.Lines {
		if line.ProductId == productId {
			return line.Quantity
		}
	}
	return 0
}

// Add merges into an existing line when the product is already present,
// otherwise appends a new line. Quantity is trusted to be >= 1; callers
// validate it.
func (c *Cart) Add(line Line) {
	for i, existing := range c.Lines {
		if existing.ProductId == line.ProductId {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// SetQuantity updates a line in place; a quantity below one removes the line.
// Unknown products are a no-op.
func (c *Cart) SetQuantity(productId uuid.UUID, quantity int32) {
	if quantity < 1 {
		c.Remove(productId)
		return
	}
	for i, line := range c.Lines {
		if line.ProductId == productId {
			c.Lines[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Remove(productId uuid.UUID) {
	for i, line := range c.Lines {
		if line.ProductId == productId {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// AvailableStock is how many more units the owning identity may still add,
// given what its cart already reserves. May be zero or negative, meaning
// "cannot add more". Never authoritative: checkout re-validates against the
// live stock inside its transaction.
func AvailableStock(stockQuantity int32, c Cart, productId uuid.UUID) int32 {
	return stockQuantity - c.QuantityOf(productId)
}
