package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts consecutive failed login attempts per account in
// Redis. Key format: login_attempts:<email>, expiring after the window so
// stale failures age out on their own.
type LoginLimiter struct {
	client *redis.Client
	window time.Duration
}

// NewLoginLimiter creates a LoginLimiter wrapping the given Redis client.
func NewLoginLimiter(client *redis.Client, window time.Duration) *LoginLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{client: client, window: window}
}

// Failed records one failed attempt and returns the running count within
// the window.
func (l *LoginLimiter) Failed(ctx context.Context, email string) (int64, error) {
	key := l.key(email)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("login counter incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return n, fmt.Errorf("login counter expire: %w", err)
		}
	}
	return n, nil
}

// Reset clears the failure counter after a successful login or a lockout.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.key(email)).Err()
}

func (l *LoginLimiter) key(email string) string {
	return "login_attempts:" + email
}
