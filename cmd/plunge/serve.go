package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/auth"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/config"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/event"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/mqtt"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/server"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/settings"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/sitesettings"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/store"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/theme"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/version"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/webhook"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and live theme stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags)
		},
	}
}

func runServe(ctx context.Context, flags *rootFlags) error {
	// Configuration comes before the logger so level and format apply.
	v, err := server.LoadConfig(flags.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := config.New(v)

	logger, err := config.NewLogger(v)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("plunge starting", zap.String("version", version.Short()))
	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded", zap.String("component", "config"), zap.String("source", f))
	} else {
		logger.Warn("no configuration file found, using defaults", zap.String("component", "config"))
	}

	db, err := openStore(ctx, cfg.GetString("database.path"))
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", cfg.GetString("database.path")),
	)

	catalog, err := theme.LoadCatalog()
	if err != nil {
		return fmt.Errorf("load theme catalog: %w", err)
	}
	logger.Info("theme catalog loaded",
		zap.String("component", "theme"),
		zap.Int("themes", len(catalog.Entries())),
	)

	bus := event.NewBus(logger.Named("event"))
	notifier := webhook.New(webhook.ConfigFrom(cfg), logger.Named("webhook"))
	notifier.Subscribe(bus)
	defer notifier.Close()

	repo, err := sitesettings.NewSQLiteRepository(ctx, db)
	if err != nil {
		return fmt.Errorf("initialize site settings: %w", err)
	}
	site := sitesettings.NewService(repo, catalog, bus, logger.Named("sitesettings"))
	selector := theme.NewSelector(catalog, site, logger.Named("theme"))

	broker := mqtt.New(mqtt.ConfigFrom(cfg), logger.Named("mqtt"))
	if err := broker.Start(ctx); err != nil {
		return err
	}
	defer broker.Close()
	broker.Subscribe(bus)
	broker.PublishActiveTheme(selector.Active(ctx).ID)

	tokens, err := tokenService(cfg, logger)
	if err != nil {
		return err
	}

	sc := server.ConfigFrom(cfg)
	stream := ws.NewHandler(bus, selector, sc.AllowedOrigins, logger.Named("ws"))
	srv := server.New(server.Options{
		Config: sc,
		Ready:  db.Ping,
		Auth:   auth.Middleware(tokens, auth.ProtectedRoutes),
	}, logger,
		settings.NewHandler(selector, site, cfg.GetInt("settings.history_limit"), logger.Named("settings")),
		stream,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by http.Server.
		stream.Close()
		return srv.Shutdown(shutdownCtx)
	})

	fmt.Fprintf(os.Stderr, "\n  Power Plunge %s is listening on %s\n\n", version.Short(), sc.Addr())

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("plunge stopped")
	return nil
}

// openStore creates the database directory, opens the store and refuses a
// database written by a newer release.
func openStore(ctx context.Context, path string) (*store.SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("database.path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.CheckVersion(ctx, version.Short()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// tokenService falls back to an ephemeral secret when none is configured.
// Tokens issued by `plunge token` then fail until auth.jwt_secret is set.
func tokenService(cfg config.Config, logger *zap.Logger) (*auth.TokenService, error) {
	if cfg.GetString("auth.jwt_secret") != "" {
		tokens, err := auth.NewTokenServiceFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("JWT secret loaded from configuration", zap.String("component", "auth"))
		return tokens, nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate JWT secret: %w", err)
	}
	logger.Warn("auth.jwt_secret not set, using an ephemeral secret; settings writes need tokens from this process",
		zap.String("component", "auth"),
	)
	ttl := cfg.GetDuration("auth.access_token_ttl")
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return auth.NewTokenService([]byte(hex.EncodeToString(b)), ttl, cfg.GetString("auth.issuer"))
}
