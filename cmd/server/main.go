package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/farmavida/farmavida-backend/config"
	"github.com/farmavida/farmavida-backend/internal/app/controller"
	"github.com/farmavida/farmavida-backend/internal/app/repository"
	"github.com/farmavida/farmavida-backend/internal/app/service"
	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/internal/db"
	"github.com/farmavida/farmavida-backend/internal/middleware"
	"github.com/farmavida/farmavida-backend/internal/router"
	"github.com/farmavida/farmavida-backend/internal/scheduler"
	ws "github.com/farmavida/farmavida-backend/internal/websocket"
	"github.com/farmavida/farmavida-backend/pkg/logger"
	"github.com/farmavida/farmavida-backend/pkg/redis"
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

	logger.Info("Starting FarmaVida Backend Server", map[string]interface{}{
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

	// Initialize Redis. Failure is not fatal: carts fall back to
	// process-memory storage and simply do not survive a restart.
	redisAvailable := true
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, carts will not be durable", map[string]interface{}{
			"error": err.Error(),
		})
		redisAvailable = false
	} else {
		defer redis.Close()
	}

	// Durable storage factory for cart sessions
	var memBackends sync.Map // session id -> *cartstore.MemoryBackend
	factory := func(sessionID string) cartstore.Storage {
		if redisAvailable {
			return cartstore.NewRedisStorage(redis.GetClient(), sessionID, cfg.Cart.KeyTTL)
		}
		backend, _ := memBackends.LoadOrStore(sessionID, cartstore.NewMemoryBackend())
		return backend.(*cartstore.MemoryBackend).Storage()
	}

	cartManager := cartstore.NewManager(factory, cfg.Cart.Debounce)
	defer cartManager.Shutdown()

	// Websocket hub pushing cart snapshots to connected tabs
	hub := ws.NewHub()
	go hub.Run()

	cartManager.OnCreate(func(sessionID string, store *cartstore.Store) {
		store.Subscribe(func(lines []cartstore.Line) {
			hub.PublishCart(sessionID, ws.CartMessage{
				Lines:     lines,
				Total:     store.Total(),
				ItemCount: store.ItemCount(),
			})
		})
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())

	// Initialize services
	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService(cartManager, productRepo)
	checkoutService := service.NewCheckoutService(cartManager)

	// Initialize controllers
	catalogController := controller.NewCatalogController(catalogService)
	cartController := controller.NewCartController(cartService)
	cartFeedController := controller.NewCartFeedController(hub, cartManager)
	checkoutController := controller.NewCheckoutController(checkoutService)

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(cfg.Session.Secret, cfg.Session.TokenExpiry)

	// Idle cart sweeper
	sweeper := scheduler.NewCartSweepScheduler(cartManager, cfg.Cart.IdleEviction)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start cart sweep scheduler", err)
	}
	defer sweeper.Stop()

	// Setup router
	r := router.NewRouter(
		catalogController,
		cartController,
		cartFeedController,
		checkoutController,
		sessionMiddleware,
		cfg,
	)
	engine := r.Setup()

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
