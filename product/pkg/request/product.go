package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	Name          string          `validate:"required"       json:"name"`
	Description   string          `                          json:"description"`
	Image         string          `                          json:"image"`
	CategoryId    uuid.UUID       `validate:"required"       json:"categoryId"`
	Price         decimal.Decimal `validate:"required"       json:"price"`
	StockQuantity int32           `validate:"min=0"          json:"stockQuantity"`
}

type Category struct {
	Name        string `validate:"required" json:"name"`
	Description string `validate:"required" json:"description"`
}
