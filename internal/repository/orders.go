package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertOrder = `
INSERT INTO orders (id, user_id, total)
VALUES ($1, $2, $3)
RETURNING id, user_id, total, status, created_at, updated_at
`

type InsertOrderParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Total  pgtype.Numeric
}

func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(c, insertOrder, arg.ID, arg.UserID, arg.Total)
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const insertOrderItem = `
INSERT INTO order_items (id, order_id, product_id, name, image, price, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertOrderItemsParams struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Image     string
	Price     pgtype.Numeric
	Quantity  int32
}

func (q *Queries) InsertOrderItems(
	c context.Context,
	args []InsertOrderItemsParams,
) (int64, error) {
	var inserted int64
	for _, arg := range args {
		tag, err := q.db.Exec(
			c,
			insertOrderItem,
			arg.ID,
			arg.OrderID,
			arg.ProductID,
			arg.Name,
			arg.Image,
			arg.Price,
			arg.Quantity,
		)
		if err != nil {
			return inserted, err
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

const findOrderById = `
SELECT id, user_id, total, status, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) FindOrderById(c context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(c, findOrderById, id)
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const findOrdersByUserId = `
SELECT id, user_id, total, status, created_at, updated_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(c, findOrdersByUserId, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const findOrders = `
SELECT id, user_id, total, status, created_at, updated_at
FROM orders
ORDER BY created_at DESC
`

func (q *Queries) FindOrders(c context.Context) ([]Order, error) {
	rows, err := q.db.Query(c, findOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const findOrderItemsByOrderId = `
SELECT id, order_id, product_id, name, image, price, quantity
FROM order_items
WHERE order_id = $1
`

func (q *Queries) FindOrderItemsByOrderId(
	c context.Context,
	orderId uuid.UUID,
) ([]OrderItem, error) {
	rows, err := q.db.Query(c, findOrderItemsByOrderId, orderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.Name, &i.Image, &i.Price, &i.Quantity)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// updateOrderStatus only moves an order out of its expected current status,
// so a terminal order can never be transitioned again even under concurrent
// admin and customer updates.
const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
`

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	Status     OrderStatus
	FromStatus OrderStatus
}

func (q *Queries) UpdateOrderStatus(
	c context.Context,
	arg UpdateOrderStatusParams,
) (int64, error) {
	tag, err := q.db.Exec(c, updateOrderStatus, arg.ID, arg.Status, arg.FromStatus)
	return tag.RowsAffected(), err
}

const sumOrderTotalsByStatus = `
SELECT COALESCE(sum(total), 0)
FROM orders
WHERE status = ANY ($1::order_status[])
`

func (q *Queries) SumOrderTotalsByStatus(
	c context.Context,
	statuses []string,
) (pgtype.Numeric, error) {
	row := q.db.QueryRow(c, sumOrderTotalsByStatus, statuses)
	var sum pgtype.Numeric
	err := row.Scan(&sum)
	return sum, err
}

const countOrdersByStatus = `
SELECT count(*)
FROM orders
WHERE status = $1
`

func (q *Queries) CountOrdersByStatus(c context.Context, status OrderStatus) (int64, error) {
	row := q.db.QueryRow(c, countOrdersByStatus, status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	orders := []Order{}
	for rows.Next() {
		var o Order
		err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
