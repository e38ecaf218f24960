package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/seedstoroots/seeds-backend/config"
	"github.com/seedstoroots/seeds-backend/internal/app/controller"
	"github.com/seedstoroots/seeds-backend/internal/app/repository"
	"github.com/seedstoroots/seeds-backend/internal/app/service"
	"github.com/seedstoroots/seeds-backend/internal/db"
	"github.com/seedstoroots/seeds-backend/internal/middleware"
	"github.com/seedstoroots/seeds-backend/internal/pricing"
	"github.com/seedstoroots/seeds-backend/internal/router"
	"github.com/seedstoroots/seeds-backend/internal/scheduler"
	"github.com/seedstoroots/seeds-backend/internal/websocket"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
	"github.com/seedstoroots/seeds-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Seeds to Roots Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis is optional: on failure the cart cache and token blacklist
	// degrade to no-ops and the server still works.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, cart caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())

	// Cart event hub for cross-session sync
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, hub)

	// Pricing engine shared by checkout quoting and cart responses
	pricingEngine := pricing.NewEngine(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.FlatShippingFee)

	// Initialize controllers
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService, pricingEngine, hub, cfg.Redis.CartTTL)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		authMiddleware,
		cfg,
	)
	app := r.Setup()

	// Stale cart pruning
	cleanup := scheduler.NewCartCleanupScheduler(cartRepo, cfg.Cleanup)
	if err := cleanup.Start(); err != nil {
		logger.Warn("Cart cleanup scheduler not started", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cleanup.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := app.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
