package ports

import (
	"context"
	"time"

	"github.com/clinicore/clinic-system/internal/core/domain"
)

// CreateUserInput carries all data needed to create a user together with
// its role profile.
type CreateUserInput struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Age      int
	Gender   string
	DOB      *time.Time
	Role     domain.Role
	Password string
}

// UpdateUserInput lists the updatable user fields. Nil means "leave as is".
// Name, Email and Phone are additionally propagated to the role profile.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Age      *int
	Gender   *string
	IsActive *bool
}

// UserResult pairs a user with its role profile. Profile is nil when the
// user's role has no entry in the role registry.
type UserResult struct {
	User    *domain.User
	Profile *domain.Profile
}

// ListUsersResult is returned by ListUsers.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines the user lifecycle use cases. Create, update and
// delete each run as one atomic cascade over the user document and its
// role profile.
type UserService interface {
	CreateUserWithRole(ctx context.Context, input CreateUserInput) (*UserResult, error)
	UpdateUserWithRole(ctx context.Context, userID string, update UpdateUserInput) (*UserResult, error)
	DeleteUserWithRole(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*UserResult, error)
	ListUsers(ctx context.Context, filter ListUsersFilter) (*ListUsersResult, error)
}
