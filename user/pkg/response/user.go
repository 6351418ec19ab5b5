package response

import (
	"time"

	"github.com/google/uuid"
)

type Login struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
