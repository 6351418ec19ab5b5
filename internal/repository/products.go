package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertProduct = `
INSERT INTO products (id, name, description, image, category_id, price, stock_quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, description, image, category_id, price, stock_quantity, created_at, updated_at
`

type InsertProductParams struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Image         string
	CategoryID    uuid.UUID
	Price         pgtype.Numeric
	StockQuantity int32
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		insertProduct,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Image,
		arg.CategoryID,
		arg.Price,
		arg.StockQuantity,
	)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Image,
		&p.CategoryID,
		&p.Price,
		&p.StockQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const updateProduct = `
UPDATE products
SET name = $2,
    description = $3,
    image = $4,
    category_id = $5,
    price = $6,
    stock_quantity = $7,
    updated_at = now()
WHERE id = $1
RETURNING id, name, description, image, category_id, price, stock_quantity, created_at, updated_at
`

type UpdateProductParams struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Image         string
	CategoryID    uuid.UUID
	Price         pgtype.Numeric
	StockQuantity int32
}

func (q *Queries) UpdateProduct(c context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		updateProduct,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Image,
		arg.CategoryID,
		arg.Price,
		arg.StockQuantity,
	)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Image,
		&p.CategoryID,
		&p.Price,
		&p.StockQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const deleteProduct = `
DELETE FROM products
WHERE id = $1
`

func (q *Queries) DeleteProduct(c context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteProduct, id)
	return tag.RowsAffected(), err
}

const findProducts = `
SELECT id, name, description, image, category_id, price, stock_quantity, created_at, updated_at
FROM products
ORDER BY name
`

func (q *Queries) FindProducts(c context.Context) ([]Product, error) {
	rows, err := q.db.Query(c, findProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Image,
			&p.CategoryID,
			&p.Price,
			&p.StockQuantity,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const findProductById = `
SELECT id, name, description, image, category_id, price, stock_quantity, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductById, id)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Image,
		&p.CategoryID,
		&p.Price,
		&p.StockQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// findProductsForUpdate locks the selected rows for the remainder of the
// transaction. Rows are locked in id order so concurrent checkouts touching
// the same products cannot deadlock each other.
const findProductsForUpdate = `
SELECT id, name, description, image, category_id, price, stock_quantity, created_at, updated_at
FROM products
WHERE id = ANY ($1)
ORDER BY id
FOR UPDATE
`

func (q *Queries) FindProductsForUpdate(c context.Context, ids []uuid.UUID) ([]Product, error) {
	rows, err := q.db.Query(c, findProductsForUpdate, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Image,
			&p.CategoryID,
			&p.Price,
			&p.StockQuantity,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const decrementProductStock = `
UPDATE products
SET stock_quantity = stock_quantity - $2, updated_at = now()
WHERE id = $1 AND stock_quantity >= $2
`

type DecrementProductStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) DecrementProductStock(
	c context.Context,
	arg DecrementProductStockParams,
) (int64, error) {
	tag, err := q.db.Exec(c, decrementProductStock, arg.ID, arg.Quantity)
	return tag.RowsAffected(), err
}

const countProducts = `
SELECT count(*)
FROM products
`

func (q *Queries) CountProducts(c context.Context) (int64, error) {
	row := q.db.QueryRow(c, countProducts)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countProductsByCategory = `
SELECT count(*)
FROM products
WHERE category_id = $1
`

func (q *Queries) CountProductsByCategory(c context.Context, categoryId uuid.UUID) (int64, error) {
	row := q.db.QueryRow(c, countProductsByCategory, categoryId)
	var count int64
	err := row.Scan(&count)
	return count, err
}
