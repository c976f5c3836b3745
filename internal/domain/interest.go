package domain

import (
	"context"
	"time"
)

// MaxUserInterests caps how many interests one user may declare.
const MaxUserInterests = 20

// ReplaceInterestsInput is a user's complete interest list, already trimmed.
type ReplaceInterestsInput struct {
	Interests []string `json:"interests" validate:"max=20,dive,required,max=100"`
}

// Interest is a named tag, unique by case-insensitive name.
// swagger:model Interest
type Interest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// InterestRepository defines the interface for interest storage.
type InterestRepository interface {
	GetByID(ctx context.Context, id string) (*Interest, error)
	List(ctx context.Context) ([]*Interest, error)
	ListByUser(ctx context.Context, userID string) ([]*Interest, error)
	// ReplaceForUser finds or creates each named interest and makes them the
	// user's complete interest set.
	ReplaceForUser(ctx context.Context, userID string, names []string) ([]*Interest, error)
}

// InterestService defines the business logic for interests.
type InterestService interface {
	List(ctx context.Context) ([]*Interest, error)
	ListForUser(ctx context.Context, userID string) ([]*Interest, error)
	ReplaceForUser(ctx context.Context, userID string, names []string) ([]*Interest, error)
}
