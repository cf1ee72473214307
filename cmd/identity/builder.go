package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/riefer02/astro-wordpress-starter/config"
	"github.com/riefer02/astro-wordpress-starter/internal/identity"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

func run() error {
	cfg := config.Load()

	if cfg.Identity.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting identity service...", logger.Component("main"))

	db, err := identity.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Connected to PostgreSQL",
		logger.Component("infrastructure"),
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
	)

	var lim *identity.LoginLimiter
	if cfg.Identity.ThrottleEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		log.Info("Connected to Redis",
			logger.Component("infrastructure"),
			logger.String("addr", cfg.Redis.Addr()),
		)
		lim = identity.NewLoginLimiter(redisClient, cfg.Identity.ThrottleMax, cfg.Identity.ThrottleWindow)
	}

	handler := identity.NewHandler(
		identity.NewPostgresUserRepository(db),
		identity.NewArgon2HasherFromConfig(&cfg.Identity),
		identity.NewTokenManager(cfg.Identity.Issuer, cfg.Identity.JWTSecret, cfg.Identity.TokenTTL, nil),
		limiterOrNil(lim),
		log,
	)

	router := identity.NewRouter(identity.RouterDeps{
		Config:  cfg,
		Logger:  log,
		Handler: handler,
		DB:      db,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Identity.Host, cfg.Identity.Port),
		Handler:      router,
		ReadTimeout:  cfg.Identity.ReadTimeout,
		WriteTimeout: cfg.Identity.WriteTimeout,
		IdleTimeout:  cfg.Identity.IdleTimeout,
	}

	return startServer(server, log)
}

// limiterOrNil keeps a typed-nil *LoginLimiter from sneaking into the
// handler's interface field.
func limiterOrNil(lim *identity.LoginLimiter) identity.Limiter {
	if lim == nil {
		return nil
	}
	return lim
}

func startServer(server *http.Server, log logger.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		log.Info("Server listening",
			logger.Component("server"),
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...",
			logger.Component("server"),
			logger.String("signal", sig.String()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped", logger.Component("server"))
	return nil
}
