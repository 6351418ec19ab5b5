package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seifhelal/storefront/cart/pkg/cart"
)

type Cart struct {
	UserId uuid.UUID       `json:"userId"`
	Lines  []cart.Line     `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}

func FromCart(c cart.Cart) Cart {
	return Cart{UserId: c.UserId, Lines: c.Lines, Total: c.Total()}
}
