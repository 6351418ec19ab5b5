package repository

import (
	"context"

	"github.com/google/uuid"
)

const insertUser = `
INSERT INTO users (id, email, password, role)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, role, created_at, updated_at
`

type InsertUserParams struct {
	ID       uuid.UUID
	Email    string
	Password string
	Role     string
}

func (q *Queries) InsertUser(c context.Context, arg InsertUserParams) (User, error) {
	row := q.db.QueryRow(c, insertUser, arg.ID, arg.Email, arg.Password, arg.Role)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const findUserByEmail = `
SELECT id, email, password, role, created_at, updated_at
FROM users
WHERE email = $1
`

func (q *Queries) FindUserByEmail(c context.Context, email string) (User, error) {
	row := q.db.QueryRow(c, findUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const findUserById = `
SELECT id, email, password, role, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) FindUserById(c context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(c, findUserById, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const countUsers = `
SELECT count(*)
FROM users
`

func (q *Queries) CountUsers(c context.Context) (int64, error) {
	row := q.db.QueryRow(c, countUsers)
	var count int64
	err := row.Scan(&count)
	return count, err
}
