// @title        Account Service API
// @version      1.0
// @description  User registration, sessions and account administration.
// @BasePath     /1
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/accountkit/account-service/internal/api"
	"github.com/accountkit/account-service/internal/api/handler"
	"github.com/accountkit/account-service/internal/core/service"
	"github.com/accountkit/account-service/internal/infrastructure/config"
	mongostore "github.com/accountkit/account-service/internal/infrastructure/db/mongo"
	redisstore "github.com/accountkit/account-service/internal/infrastructure/db/redis"
	"github.com/accountkit/account-service/internal/infrastructure/queue"
	"github.com/accountkit/account-service/internal/metrics"
	"github.com/accountkit/account-service/pkg/logger"
)

const (
	serviceName     = "account-service"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		bootLog := logger.Init(logger.Options{Service: serviceName})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	userRepo := mongostore.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Events ---
	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	defer stopDispatcher()

	publisher := redisstore.NewEventPublisher(rdb, cfg.Events.Stream)
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, publisher, log)
	dispatcher.Start(dispatcherCtx)

	// --- Services ---
	userCache := redisstore.NewUserCache(rdb, cfg.Redis.UserCacheTTL, log)
	authService := service.NewAuthService(userRepo, userCache, dispatcher, service.AuthOptions{
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)
	userService := service.NewUserService(userRepo, userCache, dispatcher, log)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)

	e := api.NewRouter(api.Dependencies{
		Auth:  authService,
		Users: userService,
		Log:   log,
		Readiness: map[string]handler.DependencyCheck{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Metrics: registry,
	})

	// --- Serve ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err, ok := <-serverErr:
		if ok {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	// Drain queued lifecycle events before the Redis client is closed.
	dispatcher.Stop()
	log.Info().Msg("server stopped")
	return nil
}
