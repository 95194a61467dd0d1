// Package ratelimit provides Redis-based rate limiting for websocket
// connection churn.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned when a rate limit is exceeded.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter provides rate limiting functionality using Redis.
type Limiter struct {
	redis *redis.Client
}

// NewLimiter creates a new rate limiter.
func NewLimiter(redis *redis.Client) *Limiter {
	return &Limiter{redis: redis}
}

// ConnectLimits defines the rate limits for websocket connection attempts.
type ConnectLimits struct {
	// Per-user: how many connections a single authenticated user can open.
	UserLimit  int
	UserWindow time.Duration

	// Per-IP: fallback limit against connection floods from one address.
	IPLimit  int
	IPWindow time.Duration
}

// DefaultConnectLimits returns the recommended connection limits.
func DefaultConnectLimits() ConnectLimits {
	return ConnectLimits{
		UserLimit:  30,
		UserWindow: time.Minute,
		IPLimit:    120,
		IPWindow:   time.Minute,
	}
}

// CheckConnect checks the connection-attempt limits for a user and source
// address. Returns nil if allowed, ErrRateLimited if any limit is exceeded.
func (l *Limiter) CheckConnect(ctx context.Context, userID, ip string) error {
	if l == nil || l.redis == nil {
		// If Redis is unavailable, allow the request (fail-open for availability).
		return nil
	}

	limits := DefaultConnectLimits()

	userKey := fmt.Sprintf("ratelimit:connect:user:%s", userID)
	if err := l.checkLimit(ctx, userKey, limits.UserLimit, limits.UserWindow); err != nil {
		log.Printf("[RateLimit] User %s exceeded connection limit", userID)
		return ErrRateLimited
	}

	if ip != "" {
		ipKey := fmt.Sprintf("ratelimit:connect:ip:%s", ip)
		if err := l.checkLimit(ctx, ipKey, limits.IPLimit, limits.IPWindow); err != nil {
			return ErrRateLimited
		}
	}

	return nil
}

// checkLimit performs the actual rate limit check using Redis INCR.
func (l *Limiter) checkLimit(ctx context.Context, key string, limit int, window time.Duration) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		// Fail-open on Redis errors to maintain availability.
		return nil
	}

	// If this is the first request, set the expiry.
	if count == 1 {
		l.redis.Expire(ctx, key, window)
	}

	if int(count) > limit {
		return ErrRateLimited
	}

	return nil
}
