// Package ratelimit caps how often a company can request a new OTP, using Redis fixed-window counters.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned when the company exhausted its budget for the current window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis failures. Callers decide whether to fail open.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const keyPrefix = "staffflow:otp-issue:"

// Limiter allows at most Limit OTP issuances per company per Window.
type Limiter struct {
	redis  redis.UniversalClient
	limit  int
	window time.Duration
}

// New returns a Limiter backed by the given Redis client. limit <= 0 disables limiting.
func New(redisClient redis.UniversalClient, limit int, window time.Duration) *Limiter {
	return &Limiter{redis: redisClient, limit: limit, window: window}
}

// AllowIssue counts one issuance for companyID and returns ErrRateLimited once the window budget is spent.
func (l *Limiter) AllowIssue(ctx context.Context, companyID int64) error {
	if l == nil || l.limit <= 0 {
		return nil
	}
	count, err := l.incrementWithTTL(ctx, issueKey(companyID), l.window)
	if err != nil {
		return err
	}
	if count > int64(l.limit) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter for companyID.
func (l *Limiter) Reset(ctx context.Context, companyID int64) error {
	if err := l.redis.Del(ctx, issueKey(companyID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: TTL is set on the first hit only.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}

func issueKey(companyID int64) string {
	return keyPrefix + strconv.FormatInt(companyID, 10)
}
