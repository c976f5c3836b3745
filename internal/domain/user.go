package domain

import (
	"context"
	"time"
)

// User represents a registered club member. Credentials live outside this service.
// swagger:model User
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	BirthDate time.Time `json:"birth_date"`
	Biography *string   `json:"biography,omitempty"`
	City      *string   `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the public part of a user shown next to events.
// swagger:model UserSummary
type UserSummary struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	City *string `json:"city,omitempty"`
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository provides read access to users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}
