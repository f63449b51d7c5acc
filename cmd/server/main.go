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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kilat-cab/service-ride/internal/application"
	"github.com/kilat-cab/service-ride/internal/config"
	rideDomain "github.com/kilat-cab/service-ride/internal/domain/ride"
	rideEvents "github.com/kilat-cab/service-ride/internal/events"
	"github.com/kilat-cab/service-ride/internal/handler"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/database"
	"github.com/kilat-cab/service-ride/internal/platform/health"
	"github.com/kilat-cab/service-ride/internal/platform/kafka"
	"github.com/kilat-cab/service-ride/internal/platform/logger"
	"github.com/kilat-cab/service-ride/internal/platform/middleware"
	"github.com/kilat-cab/service-ride/internal/repository"
)

const serviceName = "service-ride"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)
	if cfg.EphemeralJWTSecret {
		log.Warn("RIDE_JWT_SECRET not set; using a generated secret, tokens will not survive a restart")
	}

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(&repository.UserModel{}, &repository.RideModel{}, &repository.PlaceModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	rideRepo := repository.NewGormRideRepository(db)
	placeRepo := repository.NewGormPlaceRepository(db)

	// Initialize estimator and pricing
	estimator := rideDomain.NewEstimator(cfg.Estimator, rideDomain.NewStandardFareStrategy(cfg.Pricing))

	// Initialize application services
	accountService := application.NewAccountService(userRepo, jwtManager, kafkaProducer, log)
	rideService := application.NewRideService(
		rideRepo,
		userRepo,
		placeRepo,
		estimator,
		cfg.Cancellation,
		kafkaProducer,
		log,
	)
	placeService := application.NewPlaceService(placeRepo, log)

	// Initialize and start account event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "ride-service"
	accountConsumer := rideEvents.NewAccountEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		rideService,
		log,
	)
	defer func() { _ = accountConsumer.Close() }()

	go func() {
		log.Info("starting account event consumer")
		if err := accountConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("account event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, serviceName).RegisterRoutes(router)

	// Register routes
	handler.NewAccountHandler(accountService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewRideHandler(rideService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPlaceHandler(placeService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(rideService, accountService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName)

	// Cancel the consumer context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
