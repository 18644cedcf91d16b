// Package ratelimit implements a fixed-window counter in Redis shared by all
// service instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisRateLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisRateLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow counts one request for key in the current window and reports
// whether it is within the limit. Remaining is never negative.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (allowed bool, remaining int, err error) {
	bucket := l.now().Unix() / int64(l.window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", l.prefix, key, bucket)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window+time.Second)
	}

	remaining = l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(l.limit), remaining, nil
}

func (l *RedisRateLimiter) Limit() int {
	return l.limit
}
