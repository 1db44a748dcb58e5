package repository

import (
	"context"

	"minga/internal/model"
)

// UserRepository defines data access for users.
// No business logic here: uniqueness and validation belong to the service layer.
type UserRepository interface {
	// FindByID returns the user with the given ID. found is false, with a nil error, when no row matches.
	FindByID(ctx context.Context, id string) (user *model.User, found bool, err error)

	// FindByEmail returns the user with the given email, compared as stored.
	FindByEmail(ctx context.Context, email string) (user *model.User, found bool, err error)

	// Create inserts a user; the store assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, in model.CreateUserInput) (*model.User, error)

	// List returns a page of users, most recently created first.
	List(ctx context.Context, pq PageQuery) ([]model.User, error)
}
