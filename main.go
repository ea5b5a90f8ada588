package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/inventory-manager-be/internal/api"
	"github.com/isdelr/inventory-manager-be/internal/auth"
	"github.com/isdelr/inventory-manager-be/internal/config"
	"github.com/isdelr/inventory-manager-be/internal/database"
	"github.com/isdelr/inventory-manager-be/internal/logger"
	"github.com/isdelr/inventory-manager-be/internal/monitoring"
	"github.com/isdelr/inventory-manager-be/internal/services"
	"github.com/isdelr/inventory-manager-be/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Server exiting")
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	hasher := auth.NewPasswordHasher(auth.DefaultArgon2Params)
	if cfg.SeedData {
		if err := services.Seed(ctx, db, hasher); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// Revocation store: Redis when configured, SQLite otherwise.
	sqlRevoker := auth.NewSQLRevoker(db)
	var revoker auth.Revoker = sqlRevoker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		revoker = auth.NewRedisRevoker(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis token revocation store")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()

	// Set up services
	tokenCfg := auth.TokenConfig{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, hasher, eventService)
	authService := services.NewAuthService(userService, hasher, auth.NewIssuer(tokenCfg), revoker, eventService)

	statUpdater := monitoring.NewStatUpdater(eventService)
	janitor, err := monitoring.NewJanitor(cfg.RevocationPurgeSchedule, sqlRevoker, eventService)
	if err != nil {
		return err
	}

	// Set up router
	router := api.NewRouter(cfg, api.Dependencies{
		DB:        db,
		Verifier:  auth.NewVerifier(tokenCfg),
		Revoker:   revoker,
		Auth:      authService,
		Users:     userService,
		Products:  services.NewProductService(db, eventService),
		Customers: services.NewCustomerService(db, eventService),
		Events:    eventService,
		Hub:       hub,
		HostStats: statUpdater,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		statUpdater.Run(gctx)
		return nil
	})
	g.Go(func() error {
		janitor.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})
	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
