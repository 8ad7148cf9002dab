package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/bbabur/immune-risk-next-sub001/internal/config"
	"github.com/bbabur/immune-risk-next-sub001/internal/email"
	adminHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/admin"
	authHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/auth"
	healthHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/health"
	mlHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/ml"
	notificationHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/notification"
	patientHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/patient"
	referenceHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/reference"
	trainingHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/training"
	userHandler "github.com/bbabur/immune-risk-next-sub001/internal/handler/user"
	"github.com/bbabur/immune-risk-next-sub001/internal/middleware"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository/postgres"
	"github.com/bbabur/immune-risk-next-sub001/internal/router"
	adminService "github.com/bbabur/immune-risk-next-sub001/internal/service/admin"
	assessmentService "github.com/bbabur/immune-risk-next-sub001/internal/service/assessment"
	authService "github.com/bbabur/immune-risk-next-sub001/internal/service/auth"
	notificationService "github.com/bbabur/immune-risk-next-sub001/internal/service/notification"
	patientService "github.com/bbabur/immune-risk-next-sub001/internal/service/patient"
	referenceService "github.com/bbabur/immune-risk-next-sub001/internal/service/reference"
	trainingService "github.com/bbabur/immune-risk-next-sub001/internal/service/training"
	userService "github.com/bbabur/immune-risk-next-sub001/internal/service/user"
	"github.com/bbabur/immune-risk-next-sub001/pkg/auth"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/messaging"
	redisBroker "github.com/bbabur/immune-risk-next-sub001/pkg/messaging/redis"
	"github.com/bbabur/immune-risk-next-sub001/pkg/metrics"
	"github.com/bbabur/immune-risk-next-sub001/pkg/mlclient"
	"github.com/bbabur/immune-risk-next-sub001/pkg/ratelimit"
	"github.com/bbabur/immune-risk-next-sub001/pkg/security"
)

const bcryptCost = 12

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("immune_risk")

	// Redis backs both the rate limiter and the notification broker. When it
	// is not configured the limiter falls back to the in-process window and
	// notifications skip live publishing.
	var limiter ratelimit.Limiter
	var broker messaging.Broker
	var redisClient *goredis.Client
	if cfg.Redis.URL != "" {
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid Redis URL")
		}
		redisClient = goredis.NewClient(opts)
		limiter = ratelimit.NewRedisLimiter(redisClient, "immune_risk")
		broker, err = redisBroker.NewRedisBroker(redisClient, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
	} else {
		memLimiter := ratelimit.NewMemoryLimiter()
		go func() {
			for range time.Tick(time.Minute) {
				memLimiter.Cleanup(cfg.RateLimit.Window())
			}
		}()
		limiter = memLimiter
		appLogger.Warn("Redis not configured, using in-process rate limiter")
	}

	base := postgres.NewBaseRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	clinicalRepo := postgres.NewClinicalFeatureRepository(db)
	labRepo := postgres.NewLabResultRepository(db)
	familyRepo := postgres.NewFamilyHistoryRepository(base)
	occurrenceRepo := postgres.NewOccurrenceRepository(db)
	vaccinationRepo := postgres.NewVaccinationRepository(db)
	riskRepo := postgres.NewRiskAssessmentRepository(db)
	userRepo := postgres.NewUserRepository(db)
	tokenRepo := postgres.NewResetTokenRepository(base)
	referenceRepo := postgres.NewReferenceRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	trainingRepo := postgres.NewTrainingSampleRepository(db)
	adminRepo := postgres.NewAdminRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        cfg.JWT.Expiry(),
		RefreshExpiry: cfg.JWT.RefreshExpiry(),
	})
	hasher := security.NewBcryptHasher(bcryptCost)
	emailSvc := email.NewService(email.Config{
		Host:     cfg.External.SMTPHost,
		Port:     cfg.External.SMTPPort,
		Username: cfg.External.SMTPUser,
		Password: cfg.External.SMTPPassword,
		From:     cfg.External.MailFrom,
	}, appLogger)
	mlClient := mlclient.New(mlclient.Config{
		BaseURL: cfg.External.MLServiceURL,
		Timeout: cfg.External.MLTimeout,
	}, appLogger.Zerolog(), m)

	notificationSvc := notificationService.NewService(notificationRepo, broker, appLogger)
	patientSvc := patientService.NewService(patientRepo, clinicalRepo, labRepo, familyRepo, vaccinationRepo, occurrenceRepo)
	assessmentSvc := assessmentService.NewService(
		&base, patientRepo, clinicalRepo, labRepo, familyRepo,
		occurrenceRepo, vaccinationRepo, riskRepo,
		mlClient, notificationSvc, m, appLogger,
	)
	authSvc := authService.NewService(userRepo, tokenRepo, jwtSvc, hasher, emailSvc, limiter, appLogger)
	userSvc := userService.NewService(userRepo)
	referenceSvc := referenceService.NewService(referenceRepo)
	trainingSvc := trainingService.NewService(trainingRepo)
	adminSvc := adminService.NewService(adminRepo, cfg.External.AdminQueryEnabled)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(db, redisClient),
		patientHandler.NewHandler(patientSvc, assessmentSvc),
		userHandler.NewHandler(userSvc),
		mlHandler.NewHandler(mlClient),
		trainingHandler.NewHandler(trainingSvc),
		referenceHandler.NewHandler(referenceSvc),
		notificationHandler.NewHandler(notificationSvc),
		adminHandler.NewHandler(adminSvc),
		limiter,
		m,
		appLogger,
		router.Config{
			RateLimitEnabled:  cfg.RateLimit.Enabled,
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            cfg.RateLimit.Window(),
			GlobalRPS:         cfg.RateLimit.GlobalRPS,
			GlobalBurst:       cfg.RateLimit.GlobalBurst,
			CORSConfig:        middleware.DefaultCORSConfig(),
			MetricsPrefix:     "immune_risk_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("server listening on :%d", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if broker != nil {
		broker.Close()
	}
	appLogger.Info("server stopped")
}
