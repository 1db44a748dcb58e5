package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"minga/internal/model"
	"minga/internal/repository"
)

const (
	// DefaultLimit is used by callers when no limit was supplied.
	DefaultLimit = 10
	MaxLimit     = 100
	minNameLen   = 2
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrInvalidEmail   = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrInvalidName    = fmt.Errorf("%w: name must be at least %d characters long", ErrValidation, minNameLen)
	ErrDuplicateEmail = errors.New("user with this email already exists")
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("user not found")
)

// local@domain.tld, no whitespace, exactly one @. Not full RFC 5322.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService defines the use cases for users.
type UserService interface {
	// Create registers a new user. Checks run in a fixed order:
	// duplicate email, then email format, then name length.
	Create(ctx context.Context, in model.CreateUserInput) (*model.User, error)

	// List returns users newest first. limit is clamped to [1, MaxLimit] and offset to >= 0;
	// the page reports the clamped values.
	List(ctx context.Context, limit, offset int) (*model.UserPage, error)

	// Get returns a single user or ErrNotFound.
	Get(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// Create does not serialize concurrent calls: two requests with the same email can both
// pass the duplicate check unless the store enforces uniqueness.
func (s *userService) Create(ctx context.Context, in model.CreateUserInput) (*model.User, error) {
	_, exists, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	if !emailPattern.MatchString(in.Email) {
		return nil, ErrInvalidEmail
	}
	if len([]rune(strings.TrimSpace(in.Name))) < minNameLen {
		return nil, ErrInvalidName
	}

	u, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, limit, offset int) (*model.UserPage, error) {
	pq := ClampPage(limit, offset)
	users, err := s.repo.List(ctx, pq)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return &model.UserPage{Users: users, Limit: pq.Limit, Offset: pq.Offset}, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return u, nil
}

// ClampPage silently coerces pagination into bounds; out-of-range values are never rejected.
func ClampPage(limit, offset int) repository.PageQuery {
	return repository.PageQuery{
		Limit:  min(max(limit, 1), MaxLimit),
		Offset: max(offset, 0),
	}
}
