package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/getmentor/rating-api/config"
	"github.com/getmentor/rating-api/internal/cache"
	"github.com/getmentor/rating-api/internal/handlers"
	"github.com/getmentor/rating-api/internal/middleware"
	"github.com/getmentor/rating-api/internal/repository"
	"github.com/getmentor/rating-api/internal/services"
	"github.com/getmentor/rating-api/internal/validation"
	"github.com/getmentor/rating-api/pkg/db"
	"github.com/getmentor/rating-api/pkg/httpclient"
	"github.com/getmentor/rating-api/pkg/jwt"
	"github.com/getmentor/rating-api/pkg/logger"
	"github.com/getmentor/rating-api/pkg/metrics"
	"github.com/getmentor/rating-api/pkg/profiling"
	"github.com/getmentor/rating-api/pkg/tracing"
)

// registerRoutes registers operational and rating routes
func registerRoutes(
	router *gin.Engine,
	cfg *config.Config,
	generalRateLimiter, ratingRateLimiter *middleware.RateLimiter,
	tokenManager *jwt.TokenManager,
	healthHandler *handlers.HealthHandler,
	ratingHandler *handlers.RatingHandler,
) {
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	ratings := router.Group("/api/v1/ratings")
	ratings.Use(middleware.ClientSessionMiddleware(tokenManager))
	ratings.GET("/:consultationNo/check", generalRateLimiter.Middleware(), ratingHandler.CheckRating)
	ratings.POST("", ratingRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(cfg.Ratings.MaxBodyBytes), ratingHandler.SubmitRating)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting rating API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Background workers stop with this context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.AlloyEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, profiling.Service{
		Name:        cfg.Observability.ServiceName,
		Namespace:   cfg.Observability.ServiceNamespace,
		Version:     cfg.Observability.ServiceVersion,
		InstanceID:  cfg.Observability.ServiceInstanceID,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	metrics.RecordInfrastructureMetrics(ctx.Done())

	// Migrations run separately via cmd/migrate
	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:        cfg.Database.URL,
		CACertPath: cfg.Database.CACertPath,
		MaxConns:   cfg.Database.MaxConns,
		MinConns:   cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	ratingRepo := repository.NewRatingRepository(pool)
	consultationCache := cache.NewConsultationCache(ratingRepo, time.Duration(cfg.Cache.ConsultationTTLSeconds)*time.Second)
	tokenManager := jwt.NewTokenManager(cfg.ClientSession.JWTSecret, cfg.ClientSession.JWTIssuer, cfg.ClientSession.TokenTTLHours)
	httpClient := httpclient.NewStandardClient(10 * time.Second)

	ratingService := services.NewRatingService(ratingRepo, consultationCache, cfg, httpClient)

	ratingHandler := handlers.NewRatingHandler(ratingService, validation.Locale(cfg.Ratings.DefaultLocale))
	healthHandler := handlers.NewHealthHandler(ratingRepo)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(ctx, 50, 100)
	ratingRateLimiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.Ratings.RateLimitRPS), cfg.Ratings.RateLimitBurst)

	registerRoutes(router, cfg, generalRateLimiter, ratingRateLimiter, tokenManager, healthHandler, ratingHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
