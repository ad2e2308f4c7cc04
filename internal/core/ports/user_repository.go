package ports

import (
	"context"

	"github.com/identikit/user-service/internal/core/domain"
)

// UserWhere is the equality predicate applied to count and bulk-update
// operations. Zero-value fields are not part of the predicate.
type UserWhere struct {
	Username   string
	RoleID     string
	CustomerID string
}

// UserFilter carries query parameters for read operations: the equality
// predicate, paging, and which referenced documents to hydrate.
type UserFilter struct {
	Where           UserWhere
	Limit           int // max rows per page (capped at 100 by the service)
	Skip            int
	IncludeRole     bool
	IncludeCustomer bool
}

// UserPatch is a partial update. Nil fields are left untouched.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	FirstName    *string
	RoleID       *string
	CustomerID   *string
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.FirstName == nil &&
		p.RoleID == nil && p.CustomerID == nil
}

// UserRepository defines persistence operations for users. All operations on
// a single identifier are atomic per record; Create enforces username
// uniqueness so that racing duplicate creates yield exactly one winner.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Count(ctx context.Context, where UserWhere) (int64, error)
	Find(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	FindByID(ctx context.Context, id string, filter UserFilter) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateAll(ctx context.Context, patch UserPatch, where UserWhere) (int64, error)
	UpdateByID(ctx context.Context, id string, patch UserPatch) error
	ReplaceByID(ctx context.Context, id string, user *domain.User) error
	DeleteByID(ctx context.Context, id string) error
}
