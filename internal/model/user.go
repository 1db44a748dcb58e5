package model

import "time"

// User is the domain entity for an account.
// ID, CreatedAt and UpdatedAt are assigned by the store; UpdatedAt is never before CreatedAt.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPage is one page of users together with the bounds that were actually applied.
type UserPage struct {
	Users  []User `json:"users"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// CreateUserInput is the transient payload accepted by user creation.
type CreateUserInput struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"required"`
}
