package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/viraleats/viraleats-backend/config"
	"github.com/viraleats/viraleats-backend/internal/app/controller"
	"github.com/viraleats/viraleats-backend/internal/app/repository"
	"github.com/viraleats/viraleats-backend/internal/app/service"
	"github.com/viraleats/viraleats-backend/internal/db"
	"github.com/viraleats/viraleats-backend/internal/router"
	"github.com/viraleats/viraleats-backend/internal/scheduler"
	"github.com/viraleats/viraleats-backend/pkg/cache"
	"github.com/viraleats/viraleats-backend/pkg/logger"
	"github.com/viraleats/viraleats-backend/pkg/redis"
	"github.com/viraleats/viraleats-backend/pkg/tripadvisor"
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

	logger.Info("Starting Viral Eats MY Backend Server", map[string]interface{}{
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

	// Initialize Redis. The read path degrades to two tiers when the
	// persisted cache is unavailable, so a failure here is not fatal.
	var persistedCache service.CacheStore
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, running without the persisted cache tier", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		persistedCache = redis.NewRestaurantCache(redis.GetClient(), cfg.Cache.PersistedTTL)
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	}

	// Initialize repositories
	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())
	dishRepo := repository.NewDishRepository(db.GetDB())

	// Initialize services
	taClient := tripadvisor.NewClient(cfg.TripAdvisor.BaseURL, cfg.TripAdvisor.Timeout)
	enrichmentService := service.NewEnrichmentService(taClient, restaurantRepo, cfg.TripAdvisor.Timeout)

	memCache := cache.New(cfg.Cache.MemoryTTL, nil)
	restaurantService := service.NewRestaurantService(
		restaurantRepo,
		memCache,
		persistedCache,
		cfg.Cache.PersistedTTL,
		enrichmentService,
		nil,
	)
	trendingService := service.NewTrendingService(
		restaurantRepo,
		dishRepo,
		service.TrendingConfig{
			TopPercent: cfg.Trending.TopPercent,
			TopDishes:  cfg.Trending.TopDishes,
		},
		nil,
	)

	// Initialize controllers
	restaurantController := controller.NewRestaurantController(restaurantService)
	trendingController := controller.NewTrendingController(trendingService)

	// Setup router
	r := router.NewRouter(restaurantController, trendingController, cfg)
	engine := r.Setup()

	// Start the trending scheduler
	trendingScheduler := scheduler.NewTrendingScheduler(trendingService, cfg.Trending.Schedule)
	if err := trendingScheduler.Start(); err != nil {
		logger.Fatal("Failed to start trending scheduler", err)
	}
	defer trendingScheduler.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
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
