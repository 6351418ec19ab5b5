package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	orderResponse "github.com/seifhelal/storefront/order/pkg/response"
	productResponse "github.com/seifhelal/storefront/product/pkg/response"
	userResponse "github.com/seifhelal/storefront/user/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		NaN:              false,
		Valid:            true,
	}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Image:          p.Image,
		CategoryId:     p.CategoryID,
		Price:          DecimalFromNumeric(p.Price),
		StockQuantity:  p.StockQuantity,
		AvailableStock: p.StockQuantity,
		CreatedAt:      p.CreatedAt.Time,
		UpdatedAt:      p.UpdatedAt.Time,
	}
}

func (cat Category) Response() productResponse.Category {
	return productResponse.Category{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		CreatedAt:   cat.CreatedAt.Time,
		UpdatedAt:   cat.UpdatedAt.Time,
	}
}

func (o Order) Response(items []OrderItem) orderResponse.Order {
	orderItems := make([]orderResponse.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = item.Response()
	}
	return orderResponse.Order{
		ID:         o.ID,
		UserId:     o.UserID,
		Total:      DecimalFromNumeric(o.Total),
		Status:     string(o.Status),
		OrderItems: orderItems,
		CreatedAt:  o.CreatedAt.Time,
		UpdatedAt:  o.UpdatedAt.Time,
	}
}

func (i OrderItem) Response() orderResponse.OrderItem {
	return orderResponse.OrderItem{
		ID:        i.ID,
		OrderId:   i.OrderID,
		ProductId: i.ProductID,
		Name:      i.Name,
		Image:     i.Image,
		Price:     DecimalFromNumeric(i.Price),
		Quantity:  i.Quantity,
	}
}

func (u User) Response() userResponse.User {
	return userResponse.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}
