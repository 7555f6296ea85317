package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // Error inspection
	"fmt"       // Error wrapping
	"net/http"  // HTTP server
	"os"        // Exit codes and signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"storefront/internal/api"    // Custom package for API handlers
	"storefront/internal/config" // Custom package for configuration
	"storefront/internal/db"     // Database connection and migration
	"storefront/internal/logger" // Logging setup
	"storefront/internal/utils"  // Cache implementations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	if err := run(); err != nil {
		logrus.WithField("error", err.Error()).Error("Server exited")
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Setup(cfg) // Setup logger

	// Connect to the database and bring the schema up to date
	gdb, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	cache, closeCache, err := buildCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := api.NewRouter(api.Deps{
		DB:          gdb,
		Cache:       cache,
		JWTSecret:   cfg.JWTSecret,
		JWTTTL:      cfg.JWTTTL,
		CacheTTL:    cfg.CacheTTL,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attack
	}
	return serve(srv)
}

// buildCache connects to Redis, or starts the in-process cache when CACHE_DRIVER=memory
func buildCache(cfg *config.Config) (utils.Cache, func(), error) {
	if cfg.CacheDriver == config.CacheMemory {
		mc := utils.NewMemoryCache(time.Minute) // Sweep expired entries every minute
		logrus.Info("Using in-memory cache")
		return mc, mc.Close, nil
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	logrus.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	return utils.NewRedisCache(redisClient), func() { _ = redisClient.Close() }, nil
}

// serve runs srv until SIGINT or SIGTERM, then drains in-flight requests
func serve(srv *http.Server) error {
	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		return err
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logrus.Info("Server stopped gracefully")
	return nil
}
