package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-process sliding window over an in-memory map. Each
// instance keeps its own budget, so it is only suitable for single-instance
// deployments and tests; multi-instance runs should use RedisLimiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{requests: make(map[string][]time.Time)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	var valid []time.Time
	for _, t := range l.requests[key] {
		if now.Sub(t) <= window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= limit {
		l.requests[key] = valid
		return false, nil
	}

	l.requests[key] = append(valid, now)
	return true, nil
}

// Cleanup drops keys whose every timestamp has aged out of the window.
func (l *MemoryLimiter) Cleanup(window time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, times := range l.requests {
		var valid []time.Time
		for _, t := range times {
			if now.Sub(t) <= window {
				valid = append(valid, t)
			}
		}
		if len(valid) == 0 {
			delete(l.requests, key)
		} else {
			l.requests[key] = valid
		}
	}
}
