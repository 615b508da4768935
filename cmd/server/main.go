package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicore/clinic-system/internal/api"
	"github.com/clinicore/clinic-system/internal/core/service"
	mongodb "github.com/clinicore/clinic-system/internal/infrastructure/db/mongo"
	redisdb "github.com/clinicore/clinic-system/internal/infrastructure/db/redis"
	"github.com/clinicore/clinic-system/internal/infrastructure/queue"
	"github.com/clinicore/clinic-system/internal/pkg/config"
	"github.com/clinicore/clinic-system/pkg/logger"
)

// @title        Clinic System API
// @version      1.0
// @description  Multi-role clinic management backend: user lifecycle cascade, auth, reporting endpoints.
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	profileRepo := mongodb.NewProfileRepository(db)
	counterRepo := mongodb.NewCounterRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	txRunner := mongodb.NewTxRunner(client)

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := profileRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("profile indexes failed")
	}

	// --- Audit dispatcher ---
	dispatcher := queue.NewAuditDispatcher(cfg.Audit.Workers, auditRepo, log)
	dispatcher.Start(ctx)

	// --- Services ---
	userService := service.NewUserService(userRepo, profileRepo, counterRepo, txRunner, dispatcher, log)
	limiter := redisdb.NewLoginLimiter(rdb, cfg.Auth.LockWindow)
	authService := service.NewAuthService(
		userRepo, limiter,
		cfg.JWTSecret, cfg.Auth.TokenTTL,
		cfg.Auth.MaxLoginAttempts, cfg.Auth.LockWindow,
		log,
	)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, userService, authService, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
