package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	internalhttp "github.com/EternisAI/user-directory/internal/api/http"
	"github.com/EternisAI/user-directory/internal/auth"
	"github.com/EternisAI/user-directory/internal/directory"
	"github.com/EternisAI/user-directory/internal/metrics"
	"github.com/EternisAI/user-directory/internal/positions"
	"github.com/EternisAI/user-directory/internal/registration"
	"github.com/EternisAI/user-directory/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("User Directory Gateway", "version", AppVersion, "api", config.Api.BaseURL)

	if err := metrics.Register(nil); err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := newTokenStore(context.Background())
	if err != nil {
		slog.Error("Failed to initialize token store", "store", config.Token.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	client := directory.NewClient(config.Api)
	tokens := auth.NewManager(client, store)
	positionCache := positions.NewCache(client, config.Positions.CacheTTL)

	services := &internalhttp.Services{
		Version:      AppVersion,
		Users:        users.NewController(client, config.Users.PageSize),
		Registration: registration.NewController(tokens, positionCache),
		Positions:    positionCache,
		Fetcher:      client,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, services)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Http.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	slog.Info("Shutdown complete")
}

// newTokenStore builds the configured token store. The returned func releases
// its resources.
func newTokenStore(ctx context.Context) (auth.Store, func(), error) {
	switch config.Token.Store {
	case TOKEN_STORE_FILE:
		slog.Info("Persisting token to file", "path", config.Token.File)
		return auth.NewFileStore(config.Token.File), func() {}, nil
	case TOKEN_STORE_REDIS:
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", config.Redis.Addr, err)
		}
		slog.Info("Sharing token through redis", "addr", config.Redis.Addr, "key", config.Redis.Key)
		return auth.NewRedisStore(rdb, config.Redis.Key, config.Token.TTL), func() { _ = rdb.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}
