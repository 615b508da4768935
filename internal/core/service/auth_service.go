package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinic-system/internal/core/domain"
	"github.com/clinicore/clinic-system/internal/core/ports"
)

// LoginLimiter tracks consecutive failed login attempts per account
// (backed by Redis with a TTL window).
type LoginLimiter interface {
	// Failed records one failed attempt and returns the running count.
	Failed(ctx context.Context, email string) (int64, error)
	// Reset clears the failure counter.
	Reset(ctx context.Context, email string) error
}

// AuthService implements email/password login with lockout after repeated
// failures.
type AuthService struct {
	users       ports.UserRepository
	limiter     LoginLimiter
	jwtSecret   string
	tokenTTL    time.Duration
	maxAttempts int64
	lockWindow  time.Duration
	log         zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	limiter LoginLimiter,
	jwtSecret string,
	tokenTTL time.Duration,
	maxAttempts int64,
	lockWindow time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockWindow <= 0 {
		lockWindow = 15 * time.Minute
	}
	return &AuthService{
		users:       users,
		limiter:     limiter,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		maxAttempts: maxAttempts,
		lockWindow:  lockWindow,
		log:         log,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// An unknown address behaves exactly like a bad password so
		// login probes cannot enumerate accounts.
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	now := time.Now().UTC()
	if user.LockUntil != nil && user.LockUntil.After(now) {
		return "", nil, domain.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, s.registerFailure(ctx, user)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login counter")
	}
	if user.LockUntil != nil {
		if err := s.users.SetLockUntil(ctx, user.ID, nil); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to clear lock")
		}
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to stamp last login")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// registerFailure counts the failed attempt and locks the account once the
// threshold is reached. Limiter errors never turn a bad password into a
// server error.
func (s *AuthService) registerFailure(ctx context.Context, user *domain.User) error {
	count, err := s.limiter.Failed(ctx, user.Email)
	if err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("login counter unavailable")
		return domain.ErrInvalidCredentials
	}

	if count >= s.maxAttempts {
		until := time.Now().UTC().Add(s.lockWindow)
		if err := s.users.SetLockUntil(ctx, user.ID, &until); err != nil {
			s.log.Error().Err(err).Str("email", user.Email).Msg("failed to lock account")
			return domain.ErrInvalidCredentials
		}
		if err := s.limiter.Reset(ctx, user.Email); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn().Err(err).Str("email", user.Email).Msg("failed to reset login counter")
		}
		s.log.Warn().Str("email", user.Email).Time("until", until).Msg("account locked after repeated failures")
		return domain.ErrAccountLocked
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.UserID,
		"role":    string(user.Role),
		"email":   user.Email,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
