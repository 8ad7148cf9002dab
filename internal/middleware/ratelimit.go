package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/bbabur/immune-risk-next-sub001/internal/handler"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/metrics"
	"github.com/bbabur/immune-risk-next-sub001/pkg/ratelimit"
)

type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

// RateLimit enforces a per-client budget through the shared limiter, so the
// budget holds across instances when backed by Redis. Limiter errors fail
// open; an unreachable Redis must not take the API down with it.
func RateLimit(limiter ratelimit.Limiter, cfg RateLimitConfig, m *metrics.Metrics, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "http:" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.RequestsPerWindow, cfg.Window)
		if err != nil {
			log.Error(err, "rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if !allowed {
			if m != nil {
				m.RateLimitRejections.WithLabelValues("client").Inc()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, handler.NewErrorResponse("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

// GlobalRateLimit is a process-wide token bucket in front of the per-client
// limiter. It caps total throughput regardless of client spread.
func GlobalRateLimit(rps float64, burst int, m *metrics.Metrics) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			if m != nil {
				m.RateLimitRejections.WithLabelValues("global").Inc()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, handler.NewErrorResponse("server is overloaded, retry later"))
			return
		}
		c.Next()
	}
}
