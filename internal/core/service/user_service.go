package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinic-system/internal/core/domain"
	"github.com/clinicore/clinic-system/internal/core/ports"
)

const userIDSequence = "user_id"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserService implements the user lifecycle cascade: every create, update
// and delete applies atomically to the user document and its role profile.
type UserService struct {
	users    ports.UserRepository
	profiles ports.ProfileRepository
	counters ports.CounterRepository
	tx       ports.TxRunner
	audit    ports.AuditSink
	logger   zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	counters ports.CounterRepository,
	tx ports.TxRunner,
	audit ports.AuditSink,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		profiles: profiles,
		counters: counters,
		tx:       tx,
		audit:    audit,
		logger:   logger,
	}
}

func formatUserID(seq int64) string {
	return fmt.Sprintf("USR-%04d", seq)
}

// CreateUserWithRole creates a user and, when the role is registered, its
// profile document in one transaction. No partial state is ever visible:
// a failure at any step rolls back both writes.
func (s *UserService) CreateUserWithRole(ctx context.Context, input ports.CreateUserInput) (*ports.UserResult, error) {
	var result ports.UserResult

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		seq, err := s.counters.IncrementAndGet(ctx, userIDSequence)
		if err != nil {
			return fmt.Errorf("user_id sequence: %w", err)
		}
		userID := formatUserID(seq)

		// The sequence makes a collision impossible under normal operation,
		// but a manually inserted document must not abort the create.
		exists, err := s.users.ExistsByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if exists {
			if seq, err = s.counters.IncrementAndGet(ctx, userIDSequence); err != nil {
				return fmt.Errorf("user_id sequence: %w", err)
			}
			userID = formatUserID(seq)
		}

		now := time.Now().UTC()
		user := &domain.User{
			UserID:    userID,
			Name:      input.Name,
			Email:     input.Email,
			Phone:     input.Phone,
			Address:   input.Address,
			Age:       input.Age,
			Gender:    input.Gender,
			DOB:       input.DOB,
			Role:      input.Role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if input.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user.PasswordHash = string(hash)
		}

		if err := s.users.Insert(ctx, user); err != nil {
			return err
		}
		result.User = user

		desc, ok := domain.LookupRole(input.Role)
		if !ok {
			// Role without a profile collection: the user stands alone.
			return nil
		}

		identifier, err := s.nextProfileIdentifier(ctx, desc)
		if err != nil {
			return err
		}
		profile := buildProfileDefaults(user, desc, identifier, now)
		if err := s.profiles.Insert(ctx, profile); err != nil {
			return err
		}
		result.Profile = profile
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Str("role", string(input.Role)).Msg("user creation cascade failed")
		return nil, fmt.Errorf("create user with role: %w", err)
	}

	s.recordAudit(domain.AuditUserCreated, result.User)
	s.logger.Info().Str("user_id", result.User.UserID).Str("role", string(result.User.Role)).Msg("user created")
	return &result, nil
}

// UpdateUserWithRole applies update to the user and propagates the shared
// fields (name, email, phone) onto the role profile, atomically. Other
// profile fields are never touched by this path.
func (s *UserService) UpdateUserWithRole(ctx context.Context, userID string, update ports.UpdateUserInput) (*ports.UserResult, error) {
	var result ports.UserResult

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.Update(ctx, userID, update)
		if err != nil {
			return err
		}
		result.User = user

		if _, ok := domain.LookupRole(user.Role); !ok {
			return nil
		}

		shared := ports.SharedProfileFields{Name: update.Name, Email: update.Email, Phone: update.Phone}
		if err := s.profiles.UpdateShared(ctx, user.Role, user.ID, shared); err != nil {
			return err
		}

		profile, err := s.profiles.FindByUser(ctx, user.Role, user.ID)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				return nil
			}
			return err
		}
		result.Profile = profile
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("id", userID).Msg("user update cascade failed")
		return nil, fmt.Errorf("update user with role: %w", err)
	}

	s.recordAudit(domain.AuditUserUpdated, result.User)
	return &result, nil
}

// DeleteUserWithRole removes the role profile first and then the user, in
// one transaction, so neither an orphaned profile nor a dangling reference
// is ever observed.
func (s *UserService) DeleteUserWithRole(ctx context.Context, userID string) error {
	var deleted *domain.User

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		deleted = user

		if _, ok := domain.LookupRole(user.Role); ok {
			if err := s.profiles.DeleteByUser(ctx, user.Role, user.ID); err != nil {
				return err
			}
		}
		return s.users.Delete(ctx, userID)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("id", userID).Msg("user delete cascade failed")
		return fmt.Errorf("delete user with role: %w", err)
	}

	s.recordAudit(domain.AuditUserDeleted, deleted)
	s.logger.Info().Str("user_id", deleted.UserID).Str("role", string(deleted.Role)).Msg("user deleted")
	return nil
}

// GetUser returns a user and its role profile, when one exists.
func (s *UserService) GetUser(ctx context.Context, userID string) (*ports.UserResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := ports.UserResult{User: user}
	if _, ok := domain.LookupRole(user.Role); ok {
		profile, err := s.profiles.FindByUser(ctx, user.Role, user.ID)
		if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return nil, err
		}
		result.Profile = profile
	}
	return &result, nil
}

// ListUsers returns a page of users. Limit defaults to 20 and is capped
// at 100.
func (s *UserService) ListUsers(ctx context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// nextProfileIdentifier scans the role's existing identifiers for the
// highest numeric suffix and returns the next one, formatted.
//
// Two concurrent creates for the same role can compute the same next value
// before either commits; the transaction's isolation plus the unique index
// on the identifier field keep duplicates out of the collection, at the
// cost of aborting one of the two creates.
func (s *UserService) nextProfileIdentifier(ctx context.Context, desc domain.RoleDescriptor) (string, error) {
	ids, err := s.profiles.Identifiers(ctx, desc)
	if err != nil {
		return "", fmt.Errorf("scan %s identifiers: %w", desc.Collection, err)
	}

	max := 0
	for _, id := range ids {
		if n, ok := desc.ParseIdentifier(id); ok && n > max {
			max = n
		}
	}
	return desc.FormatIdentifier(max + 1), nil
}

func (s *UserService) recordAudit(action domain.AuditAction, user *domain.User) {
	if s.audit == nil || user == nil {
		return
	}
	s.audit.Record(domain.AuditEntry{
		UserID:    user.UserID,
		Action:    action,
		Role:      user.Role,
		Timestamp: time.Now().UTC(),
	})
}
