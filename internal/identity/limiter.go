package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/riefer02/astro-wordpress-starter/pkg/errors"
)

const throttleKeyPrefix = "login_attempts:"

// LoginLimiter throttles failed login attempts per login name. The
// counter is keyed in Redis with a sliding reset on the first attempt of
// each window.
type LoginLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewLoginLimiter creates a limiter allowing max failures per window.
func NewLoginLimiter(client *redis.Client, max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, max: max, window: window}
}

// Allow reports whether login may proceed for this login name. Errors
// from Redis fail open so an outage cannot lock everyone out.
func (l *LoginLimiter) Allow(ctx context.Context, login string) (bool, error) {
	count, err := l.client.Get(ctx, throttleKeyPrefix+login).Int()
	if err != nil && err != redis.Nil {
		return true, apperrors.Wrap(err, "failed to read attempt counter")
	}
	return count < l.max, nil
}

// RecordFailure bumps the attempt counter. The window starts at the
// first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, login string) error {
	key := throttleKeyPrefix + login
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return apperrors.Wrap(err, "failed to bump attempt counter")
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return apperrors.Wrap(err, "failed to set attempt window")
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, login string) error {
	if err := l.client.Del(ctx, throttleKeyPrefix+login).Err(); err != nil {
		return apperrors.Wrap(err, "failed to reset attempt counter")
	}
	return nil
}
