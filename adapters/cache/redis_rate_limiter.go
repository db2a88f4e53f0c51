package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/sencity/user-service/internal/application/service"
)

const rateLimitKeyPrefix = "ratelimit:"

// redisRateLimiter allows limit hits per window for each key. The GCRA
// state is read and written by one Lua script and always carries a TTL.
type redisRateLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) service.RateLimiter {
	if window < time.Second {
		window = time.Second
	}
	if limit < 1 {
		limit = 1
	}
	return &redisRateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		limit: redis_rate.Limit{
			Rate:   limit,
			Period: window,
			Burst:  limit,
		},
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) (service.RateLimitResult, error) {
	res, err := l.limiter.Allow(ctx, rateLimitKeyPrefix+key, l.limit)
	if err != nil {
		return service.RateLimitResult{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	return service.RateLimitResult{
		Allowed:    res.Allowed > 0,
		RetryAfter: res.RetryAfter,
	}, nil
}
