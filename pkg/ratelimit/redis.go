package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps one sorted set of attempt timestamps per key, so the
// budget is shared across every process instance pointing at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// Trim, count and record run in one script so concurrent callers cannot all
// pass the count check and exceed the budget.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	windowStart := now.Add(-window)

	allowed, err := allowScript.Run(ctx, l.client, []string{redisKey},
		windowStart.UnixNano(), limit, now.UnixNano(), window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit window: %w", err)
	}
	return allowed == 1, nil
}
