package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/algoprep/backend/internal/data"
	"github.com/algoprep/backend/internal/handler"
	"github.com/algoprep/backend/internal/infrastructure"
	"github.com/algoprep/backend/internal/judge"
	"github.com/algoprep/backend/internal/middleware"
	"github.com/algoprep/backend/internal/repository"
	"github.com/algoprep/backend/internal/service"
)

func main() {
	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting AlgoPrep API",
		zap.String("environment", config.Server.Environment),
		zap.Int("port", config.Server.Port),
	)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	// Create metrics
	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		logger.Error("Failed to create metrics", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	database, err := infrastructure.NewDatabase(&config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// Seed the problem catalog
	seeder := data.NewSeeder(database.DB, logger)
	if err := seeder.SeedProblems(); err != nil {
		logger.Error("Failed to seed problems", zap.Error(err))
		os.Exit(1)
	}

	// Initialize the evaluation engine
	executor, err := newExecutor(ctx, &config.Judge, logger)
	if err != nil {
		logger.Error("Failed to initialize judge executor", zap.Error(err))
		os.Exit(1)
	}
	judgeService := judge.NewService(executor, config.Judge.TimeLimit, telemetry.Tracer, logger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	problemRepo := repository.NewProblemRepository(database.DB)
	progressRepo := repository.NewProgressRepository(database.DB)
	statsRepo := repository.NewStatsRepository(database.DB)

	// Initialize services
	userService := service.NewUserService(userRepo, statsRepo, progressRepo, problemRepo, &config.JWT, telemetry.Tracer, logger)
	problemService := service.NewProblemService(problemRepo, progressRepo, telemetry.Tracer, logger)
	submissionService := service.NewSubmissionService(database.DB, problemRepo, judgeService, metrics, telemetry.Tracer, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService)
	userHandler := handler.NewUserHandler(userService)
	problemHandler := handler.NewProblemHandler(problemService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	corsConfig := middleware.DefaultCORSConfig()
	if config.Server.Environment == "production" && len(config.Server.CORSOrigins) > 0 {
		corsConfig = middleware.ProductionCORSConfig(config.Server.CORSOrigins)
	}
	router.Use(middleware.CORSMiddleware(corsConfig))
	router.Use(middleware.TracingMiddleware(telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Problem routes (public, annotated with progress when a token is sent)
		problems := api.Group("/problems")
		problems.Use(middleware.OptionalAuthMiddleware(userService))
		{
			problems.GET("", problemHandler.GetProblems)
			problems.GET("/stats", problemHandler.GetCatalogStats)
			problems.GET("/categories", problemHandler.GetCategories)
			problems.GET("/slug/:slug", problemHandler.GetProblemBySlug)
			problems.GET("/:id", problemHandler.GetProblem)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(userService))
		{
			// Submission routes
			submissions := protected.Group("/submissions")
			{
				submissions.POST("", submissionHandler.Submit)
				submissions.GET("", submissionHandler.GetSubmissions)
			}

			// User routes
			users := protected.Group("/users")
			{
				users.GET("/me", userHandler.GetCurrentUser)
				users.GET("/me/stats", userHandler.GetUserStats)
				users.GET("/me/progress", userHandler.GetUserProgress)
			}
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newExecutor selects the evaluation backend from configuration. Docker is
// the default; the process engine runs code directly and is only meant for
// development machines without a Docker daemon.
func newExecutor(ctx context.Context, config *infrastructure.JudgeConfig, logger *zap.Logger) (judge.Executor, error) {
	switch config.Engine {
	case "process":
		logger.Warn("Using process executor, submitted code runs without isolation")
		return judge.NewProcessExecutor(), nil
	case "docker":
		executor, err := judge.NewDockerExecutor(config.MemoryLimitMB, logger)
		if err != nil {
			return nil, err
		}
		executor.PullImages(ctx)
		return executor, nil
	default:
		return nil, fmt.Errorf("unknown judge engine %q", config.Engine)
	}
}
