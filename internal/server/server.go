// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/go-newsletter/internal/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/config"
	"codeberg.org/oliverandrich/go-newsletter/internal/database"
	"codeberg.org/oliverandrich/go-newsletter/internal/handlers"
	"codeberg.org/oliverandrich/go-newsletter/internal/i18n"
	"codeberg.org/oliverandrich/go-newsletter/internal/repository"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/articles"
	authsvc "codeberg.org/oliverandrich/go-newsletter/internal/services/auth"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/email"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/images"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/subscriptions"
	"codeberg.org/oliverandrich/go-newsletter/internal/services/unsubscribe"
	"codeberg.org/oliverandrich/go-newsletter/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.NewProvider(func() (*config.Config, error) {
		return config.NewFromCLI(cmd), nil
	}).Get()
	if err != nil {
		return err
	}
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"dialect", database.DialectFor(cfg.Database.URL),
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	e, err := New(ctx, cfg, db)
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(ctx, e, cfg)
}

// New wires services, middleware and routes onto a fresh Echo instance.
func New(ctx context.Context, cfg *config.Config, db *sqlx.DB) (*echo.Echo, error) {
	codec, err := auth.NewCodec(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	links, err := unsubscribe.NewSigner(cfg.Auth.Secret, cfg.Server.BaseURL, cfg.Unsubscribe.LinkTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create link signer: %w", err)
	}

	opts := articles.Options{Links: links}

	if cfg.SMTP.Enabled() {
		mailer, mailErr := email.NewService(&cfg.SMTP)
		if mailErr != nil {
			return nil, fmt.Errorf("failed to create mailer: %w", mailErr)
		}
		opts.Mailer = mailer
	} else {
		slog.Warn("SMTP not configured, newsletter mails are disabled")
	}

	var uploader handlers.ImageUploader
	if cfg.Storage.Enabled() {
		store, storeErr := images.NewService(ctx, &cfg.Storage)
		if storeErr != nil {
			return nil, fmt.Errorf("failed to create image storage: %w", storeErr)
		}
		opts.Images = store
		uploader = store
	}

	repo := repository.New(db)
	hub := sse.NewHub()

	h := handlers.New(handlers.Deps{
		DB:            db,
		Auth:          authsvc.NewService(repo, codec),
		Articles:      articles.NewService(repo, hub, cfg.Server.BaseURL, opts),
		Subscriptions: subscriptions.NewService(repo, links),
		Images:        uploader,
		Hub:           hub,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg)
	setupRoutes(e, h, codec)

	return e, nil
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e.Server.ReadHeaderTimeout = 10 * time.Second

	errChan := make(chan error, 1)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
