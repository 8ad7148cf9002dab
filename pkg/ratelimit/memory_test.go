package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterBlocksOverBudget(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "client-a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be admitted", i+1)
	}

	ok, err := l.Allow(ctx, "client-a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "4th request within the window must be rejected")

	// An unrelated key keeps its own budget.
	ok, err = l.Allow(ctx, "client-b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiterRecoversAfterWindow(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	ok, err := l.Allow(ctx, "client", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "client", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(30 * time.Millisecond)

	ok, err = l.Allow(ctx, "client", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok, "request after the window elapses must succeed")
}

func TestMemoryLimiterCleanup(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	_, err := l.Allow(ctx, "stale", 5, 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	l.Cleanup(10 * time.Millisecond)

	l.mu.Lock()
	_, exists := l.requests["stale"]
	l.mu.Unlock()
	assert.False(t, exists)
}
