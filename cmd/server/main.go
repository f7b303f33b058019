package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"travelo/internal/config"
	"travelo/internal/handlers"
	"travelo/internal/middleware"
	"travelo/internal/repositories/mongodb"
	"travelo/internal/services"
	"travelo/pkg/cache"
	"travelo/pkg/database"
	"travelo/pkg/logger"
	"travelo/pkg/payment"
	"travelo/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  "json",
		Output:  "stdout",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Database
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Cache
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Repositories
	bookingRepo := mongodb.NewBookingRepository(db.Database)
	partnerRepo := mongodb.NewPartnerRepository(db.Database)
	voucherRepo := mongodb.NewVoucherRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database)
	rentalRepo := mongodb.NewRentalRepository(db.Database)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database)
	paymentRepo := mongodb.NewPaymentRepository(db.Database)
	walletRepo := mongodb.NewWalletRepository(db.Database)
	payoutRepo := mongodb.NewPayoutRepository(db.Database)

	// Payment gateways
	providers := map[string]payment.Provider{
		"stripe":   payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.WebhookSecret),
		"razorpay": payment.NewRazorpayProvider(cfg.Payment.Razorpay.KeyID, cfg.Payment.Razorpay.KeySecret, cfg.Payment.Razorpay.Webhook),
	}

	// Services
	voucherService := services.NewVoucherService(voucherRepo)
	pointsService := services.NewPointsService(userRepo)
	reconcileService := services.NewReconcileService(bookingRepo, partnerRepo, voucherService, pointsService, redisCache, db.WithTransaction, appLogger, cfg.Booking.VoucherReversal)
	bookingService := services.NewBookingService(bookingRepo, partnerRepo, voucherService, pointsService, reconcileService, appLogger)
	walletService := services.NewWalletService(walletRepo, payoutRepo, appLogger)
	rentalService := services.NewRentalService(rentalRepo, vehicleRepo, walletService, services.NewPhotoPresenceVerifier(), cfg.Booking.GeofenceToleranceM, appLogger)
	paymentService := services.NewPaymentService(paymentRepo, rentalRepo, walletService, providers, appLogger)

	// Finish payout sagas interrupted by a previous crash before serving.
	if err := walletService.RecoverEscrowedPayouts(context.Background()); err != nil {
		appLogger.WithError(err).Warn("payout recovery sweep failed")
	}

	// Handlers
	bookingHandler := handlers.NewBookingHandler(bookingService)
	voucherHandler := handlers.NewVoucherHandler(voucherService)
	rentalHandler := handlers.NewRentalHandler(rentalService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	walletHandler := handlers.NewWalletHandler(walletService)

	// Router
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupBookingRoutes(v1, bookingHandler, voucherHandler, cfg.Security.JWTSecret)
		routes.SetupRentalRoutes(v1, rentalHandler, cfg.Security.JWTSecret)
		routes.SetupPaymentRoutes(v1, paymentHandler, walletHandler, cfg.Security.JWTSecret)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		health := gin.H{"status": "healthy", "version": cfg.App.Version}
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["mongodb"] = err.Error()
		}
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "degraded"
			health["redis"] = err.Error()
		}
		c.JSON(status, health)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.App.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
}
