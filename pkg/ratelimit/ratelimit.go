package ratelimit

import (
	"context"
	"time"
)

// Limiter answers whether an identifier may proceed given a sliding window
// budget. Allow records the attempt when it is admitted.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
