package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bbabur/immune-risk-next-sub001/internal/middleware"
	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/metrics"
	"github.com/bbabur/immune-risk-next-sub001/pkg/ratelimit"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AdminScopedHandler splits its surface between the authenticated group and
// the admin-gated group.
type AdminScopedHandler interface {
	Handler
	RegisterAdminRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitEnabled  bool
	RequestsPerWindow int
	Window            time.Duration
	GlobalRPS         float64
	GlobalBurst       int
	CORSConfig        middleware.CORSConfig
	MetricsPrefix     string
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	authH   Handler
	healthH Handler

	patientH      Handler
	userH         AdminScopedHandler
	mlH           Handler
	trainingH     Handler
	referenceH    AdminScopedHandler
	notificationH Handler
	adminH        Handler

	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	healthH Handler,
	patientH Handler,
	userH AdminScopedHandler,
	mlH Handler,
	trainingH Handler,
	referenceH AdminScopedHandler,
	notificationH Handler,
	adminH Handler,
	limiter ratelimit.Limiter,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		healthH:       healthH,
		patientH:      patientH,
		userH:         userH,
		mlH:           mlH,
		trainingH:     trainingH,
		referenceH:    referenceH,
		notificationH: notificationH,
		adminH:        adminH,
		metrics:       initRouterMetrics(cfg.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(log.Zerolog()),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.CORS(cfg.CORSConfig),
	)

	if cfg.GlobalRPS > 0 {
		engine.Use(middleware.GlobalRateLimit(cfg.GlobalRPS, cfg.GlobalBurst, m))
	}
	if cfg.RateLimitEnabled {
		engine.Use(middleware.RateLimit(limiter, middleware.RateLimitConfig{
			RequestsPerWindow: cfg.RequestsPerWindow,
			Window:            cfg.Window,
		}, m, log))
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.healthH.RegisterRoutes(api)
	api.GET("/health/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	r.authH.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.patientH.RegisterRoutes(protected)
	r.userH.RegisterRoutes(protected)
	r.mlH.RegisterRoutes(protected)
	r.trainingH.RegisterRoutes(protected)
	r.referenceH.RegisterRoutes(protected)
	r.notificationH.RegisterRoutes(protected)

	// Admin routes need the admin role on top of authentication
	adminGroup := protected.Group("")
	adminGroup.Use(r.auth.RequireRole(model.RoleAdmin))
	r.adminH.RegisterRoutes(adminGroup)
	r.userH.RegisterAdminRoutes(adminGroup)
	r.referenceH.RegisterAdminRoutes(adminGroup)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
