package ports

import (
	"context"
	"time"

	"github.com/clinicore/clinic-system/internal/core/domain"
)

// ListUsersFilter carries all query parameters for listing users.
type ListUsersFilter struct {
	Role   string // optional: filter by role
	Search string // optional: partial match on name, email or user_id
	Active *bool  // optional: filter by isActive
	Page   int    // 1-based
	Limit  int    // max rows per page (capped at 100 by service)
}

// UserRepository defines persistence operations for the users collection.
type UserRepository interface {
	Insert(ctx context.Context, u *domain.User) error
	// ExistsByUserID reports whether a user already carries the given
	// display identifier (USR-xxxx).
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update applies the non-nil fields and returns the updated document.
	Update(ctx context.Context, id string, update UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of users matching filter and the total count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetLockUntil(ctx context.Context, id string, until *time.Time) error
}

// SharedProfileFields is the narrow field set propagated from a user onto
// its role profile on update. Nil fields are left untouched.
type SharedProfileFields struct {
	Name  *string
	Email *string
	Phone *string
}

// ProfileRepository defines persistence operations across the role profile
// collections. The target collection is resolved from the role registry.
type ProfileRepository interface {
	Insert(ctx context.Context, p *domain.Profile) error
	// Identifiers returns every stored display identifier for the role
	// that matches the role's pattern.
	Identifiers(ctx context.Context, desc domain.RoleDescriptor) ([]string, error)
	FindByUser(ctx context.Context, role domain.Role, userID string) (*domain.Profile, error)
	UpdateShared(ctx context.Context, role domain.Role, userID string, shared SharedProfileFields) error
	DeleteByUser(ctx context.Context, role domain.Role, userID string) error
}

// CounterRepository mints strictly increasing integers per named sequence.
type CounterRepository interface {
	// IncrementAndGet atomically increments the named sequence and returns
	// the new value. Safe under concurrent callers; when called inside a
	// transaction the increment rolls back with it.
	IncrementAndGet(ctx context.Context, name string) (int64, error)
}

// TxRunner executes fn inside a single multi-document transaction. The ctx
// passed to fn must be used for every repository call so the writes join
// the same transaction.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditRepository persists audit trail entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}

// AuditSink accepts audit entries for asynchronous persistence.
type AuditSink interface {
	Record(entry domain.AuditEntry)
}
