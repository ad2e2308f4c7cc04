package ports

import (
	"context"
	"time"

	"github.com/identikit/user-service/internal/core/domain"
)

// RegisterUserInput carries the data needed to create a new user. The
// identifier is always system-generated; callers cannot choose it.
type RegisterUserInput struct {
	Username   string
	Password   string
	FirstName  string
	RoleID     string
	CustomerID string
}

// UpdateUserInput is a partial update as submitted by a caller. A non-nil
// Password is hashed by the service before it reaches the store.
type UpdateUserInput struct {
	Username   *string
	Password   *string
	FirstName  *string
	RoleID     *string
	CustomerID *string
}

// ReplaceUserInput is a full replacement of a user's mutable fields.
type ReplaceUserInput struct {
	Username   string
	Password   string
	FirstName  string
	RoleID     string
	CustomerID string
}

// UserService defines the use-case operations over users. Every operation
// except Login and Register assumes the bearer gate has already admitted the
// request.
type UserService interface {
	Login(ctx context.Context, username, password string) (token string, err error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
	Register(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	Count(ctx context.Context, where UserWhere) (int64, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Get(ctx context.Context, id string, filter UserFilter) (*domain.User, error)
	UpdateAll(ctx context.Context, input UpdateUserInput, where UserWhere) (int64, error)
	Update(ctx context.Context, id string, input UpdateUserInput) error
	Replace(ctx context.Context, id string, input ReplaceUserInput) error
	Delete(ctx context.Context, id string) error
}
