package service

import (
	"context"
	"time"
)

type RateLimitResult struct {
	Allowed bool
	// RetryAfter is how long the caller should wait when not allowed.
	RetryAfter time.Duration
}

type RateLimiter interface {
	// Allow records one hit for key and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}
