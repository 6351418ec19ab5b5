package request

import "github.com/google/uuid"

type AddCartLine struct {
	ProductId uuid.UUID `validate:"required"    json:"productId"`
	Quantity  int32     `validate:"required,min=1" json:"quantity"`
}

type SetQuantity struct {
	Quantity int32 `validate:"required" json:"quantity"`
}
