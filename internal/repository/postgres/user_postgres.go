package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"minga/internal/model"
	"minga/internal/repository"
)

// Querier is the slice of database.PostgresClient the repository needs.
type Querier interface {
	Query(ctx context.Context, statement string, scan func(*sql.Rows) error, args ...any) error
}

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses parameterized queries and contains no business logic.
type UserPostgres struct {
	db Querier
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db Querier) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, name, created_at, updated_at`

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, bool, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, q, id)
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, bool, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, q, email)
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	const q = `
		INSERT INTO users (email, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING ` + userColumns

	users, err := r.collect(ctx, q, in.Email, in.Name)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, &repository.DecodeError{Entity: "user", Err: errors.New("insert returned no row")}
	}
	return &users[0], nil
}

// List returns users using LIMIT/OFFSET pagination, newest first.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) ([]model.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	return r.collect(ctx, q, pq.Limit, pq.Offset)
}

func (r *UserPostgres) findOne(ctx context.Context, q string, arg string) (*model.User, bool, error) {
	users, err := r.collect(ctx, q, arg)
	if err != nil {
		return nil, false, err
	}
	if len(users) == 0 {
		return nil, false, nil
	}
	return &users[0], true, nil
}

func (r *UserPostgres) collect(ctx context.Context, q string, args ...any) ([]model.User, error) {
	users := make([]model.User, 0)
	err := r.db.Query(ctx, q, func(rows *sql.Rows) error {
		u, err := scanUser(rows)
		if err != nil {
			return err
		}
		users = append(users, u)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// scanUser decodes one row into typed destinations and normalizes timestamps to UTC.
func scanUser(rows *sql.Rows) (model.User, error) {
	var u model.User
	if err := rows.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return model.User{}, &repository.DecodeError{Entity: "user", Err: err}
	}
	if u.ID == "" {
		return model.User{}, &repository.DecodeError{Entity: "user", Err: errors.New("empty id")}
	}
	if u.UpdatedAt.Before(u.CreatedAt) {
		return model.User{}, &repository.DecodeError{
			Entity: "user",
			Err:    fmt.Errorf("updated_at %s precedes created_at %s", u.UpdatedAt, u.CreatedAt),
		}
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
