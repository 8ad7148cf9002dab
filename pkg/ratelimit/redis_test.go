package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLimiter(t *testing.T) *RedisLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisLimiter(client, "test")
}

func TestRedisLimiterBlocksOverBudget(t *testing.T) {
	limiter := setupRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "login:a@b.example", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, "login:a@b.example", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// an unrelated key keeps its own budget
	ok, err = limiter.Allow(ctx, "login:other@b.example", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterWindowSlides(t *testing.T) {
	limiter := setupRedisLimiter(t)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "k", 1, 30*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = limiter.Allow(ctx, "k", 1, 30*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)

	time.Sleep(40 * time.Millisecond)

	ok, err = limiter.Allow(ctx, "k", 1, 30*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterConcurrentExactBudget(t *testing.T) {
	limiter := setupRedisLimiter(t)
	ctx := context.Background()

	const attempts = 20
	const limit = 5

	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := limiter.Allow(ctx, "burst", limit, time.Minute)
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for ok := range results {
		if ok {
			admitted++
		}
	}
	assert.Equal(t, limit, admitted)
}
