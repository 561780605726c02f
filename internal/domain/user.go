package domain

import (
	"context"
	"time"
)

// User represents a registered user. User management itself lives in the CRUD
// layer; the core only needs existence checks and email lookup for
// notifications.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
}
