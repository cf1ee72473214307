package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riefer02/astro-wordpress-starter/config"
	"github.com/riefer02/astro-wordpress-starter/internal/routes"
	"github.com/riefer02/astro-wordpress-starter/internal/site"
	"github.com/riefer02/astro-wordpress-starter/internal/token"
	"github.com/riefer02/astro-wordpress-starter/internal/wordpress"
	"github.com/riefer02/astro-wordpress-starter/pkg/logger"
)

func run() error {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Logging.Environment,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting site gateway...",
		logger.Component("main"),
		logger.String("wordpress_url", cfg.WordPress.BaseURL),
	)

	policy, err := loadPolicy(cfg, log)
	if err != nil {
		return err
	}

	deps := site.RouterDeps{
		Config:  cfg,
		Logger:  log,
		Auth:    wordpress.NewAuthClient(cfg.WordPress.BaseURL, cfg.WordPress.HTTPTimeout),
		Content: wordpress.NewContentClient(cfg.WordPress.BaseURL, cfg.WordPress.HTTPTimeout, cfg.WordPress.CacheTTL),
		Store:   token.NewCookieStore(cfg.Session.SecureCookies),
		Policy:  policy,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Site.Host, cfg.Site.Port),
		Handler:      site.NewRouter(deps),
		ReadTimeout:  cfg.Site.ReadTimeout,
		WriteTimeout: cfg.Site.WriteTimeout,
		IdleTimeout:  cfg.Site.IdleTimeout,
	}

	return startServer(server, log)
}

func loadPolicy(cfg *config.Config, log logger.Logger) (*routes.Policy, error) {
	if cfg.Session.RoutesFile == "" {
		return routes.Default(), nil
	}
	policy, err := routes.LoadFile(cfg.Session.RoutesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load route policy: %w", err)
	}
	log.Info("Loaded public-route policy",
		logger.Component("main"),
		logger.String("file", cfg.Session.RoutesFile),
	)
	return policy, nil
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
