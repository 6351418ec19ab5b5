package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID         uuid.UUID       `json:"id"`
	UserId     uuid.UUID       `json:"userId"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	OrderItems []OrderItem     `json:"orderItems"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderId   uuid.UUID       `json:"orderId"`
	ProductId uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
}

type Dashboard struct {
	Revenue       decimal.Decimal `json:"revenue"`
	PendingOrders int64           `json:"pendingOrders"`
	Products      int64           `json:"products"`
	Users         int64           `json:"users"`
}
