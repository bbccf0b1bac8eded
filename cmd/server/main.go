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

	"github.com/linkpro/linkpro/config"
	appmodel "github.com/linkpro/linkpro/internal/app/model"
	apprepository "github.com/linkpro/linkpro/internal/app/repository"
	appserver "github.com/linkpro/linkpro/internal/app/server"
	appservice "github.com/linkpro/linkpro/internal/app/service"
	apptoken "github.com/linkpro/linkpro/internal/app/token"
	"github.com/linkpro/linkpro/internal/infra/logger"
	"github.com/linkpro/linkpro/internal/infra/metrics"
	infraNATS "github.com/linkpro/linkpro/internal/infra/nats"
	infraRedis "github.com/linkpro/linkpro/internal/infra/redis"
	"github.com/linkpro/linkpro/internal/infra/storage"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("nats_enabled", cfg.NATS.Enabled),
	)

	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		if !isDev {
			log.Fatal("SESSION_SECRET must be set in production")
		}
		log.Warn("SESSION_SECRET not set, using development secret")
		secret = []byte("linkpro-dev-secret")
	}

	gormDB, err := storage.NewGorm(cfg.Storage, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := storage.AutoMigrate(ctx, gormDB,
		&appmodel.User{},
		&appmodel.Credential{},
		&appmodel.Session{},
		&appmodel.ProfileLink{},
		&appmodel.ClickLog{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("Connected to Redis successfully")
	}

	userRepo := apprepository.NewUserRepository(gormDB)
	linkRepo := apprepository.NewLinkRepository(gormDB)
	clickRepo := apprepository.NewClickLogRepository(gormDB)
	sessionRepo := apprepository.NewSessionRepository(gormDB)

	sessionSigner := apptoken.NewSessionSigner(secret, cfg.Session.TTL)
	redirectSigner := apptoken.NewRedirectSigner(secret, cfg.Redirect.TokenTTL)

	identity := appservice.NewIdentityService(userRepo, sessionSigner, log)
	if err := identity.SeedFilter(ctx); err != nil {
		log.Fatal("Failed to seed identity filter", zap.Error(err))
	}

	var notifier appservice.ClickNotifier
	var js nats.JetStreamContext
	if cfg.NATS.Enabled {
		natsConn, jsCtx, err := infraNATS.Connect(cfg.NATS)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Drain()
		log.Info("Connected to NATS successfully")

		publisher, err := appservice.NewClickPublisher(jsCtx)
		if err != nil {
			log.Fatal("Failed to set up click publisher", zap.Error(err))
		}
		notifier = publisher
		js = jsCtx
	}

	linkService := appservice.NewLinkService(linkRepo, clickRepo, notifier, log)
	hub := appservice.NewRefreshHub(linkService, cfg.Refresh.Interval, cfg.Refresh.IdleTimeout, log)
	defer hub.Close()

	if js != nil {
		subscriber := appservice.NewClickSubscriber(js, hub, log)
		if err := subscriber.Start(); err != nil {
			log.Fatal("Failed to start click subscriber", zap.Error(err))
		}
		defer subscriber.Stop()
	}

	sessions := appservice.NewSessionController(identity, sessionRepo, log)
	if err := sessions.Restore(ctx); err != nil {
		log.Warn("Failed to restore persisted session", zap.Error(err))
	}

	if cfg.Prometheus.Enabled {
		promServer := metrics.NewServer(cfg.Prometheus.Port)
		go func() {
			log.Info("Starting Prometheus metrics server", zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	}

	server := appserver.New(appserver.Dependencies{
		Logger:           log,
		Redis:            redisClient,
		Users:            userRepo,
		Identity:         identity,
		Sessions:         sessions,
		Links:            linkService,
		Hub:              hub,
		RedirectTokens:   redirectSigner,
		CountdownSeconds: cfg.Redirect.CountdownSeconds,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("Fiber server exited", zap.Error(err))
		}
	case sig := <-sigChan:
		log.Info("Shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}
