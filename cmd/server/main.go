package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/krishdev/permithub/internal/config"
	"github.com/krishdev/permithub/internal/logging"
	"github.com/krishdev/permithub/internal/reconcile"
	"github.com/krishdev/permithub/internal/sheets"
	"github.com/krishdev/permithub/internal/store"
	"github.com/krishdev/permithub/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_path", cfg.Store.Path,
		"sheet_sync_enabled", cfg.Sheets.SyncEnabled,
	)

	env, err := store.Open(cfg.Store.Path, cfg.Store.MapSize)
	if err != nil {
		slog.Error("failed to open store", "error", err, "path", cfg.Store.Path)
		os.Exit(1)
	}
	defer env.Close()
	slog.Info("store opened", "file", env.Path())

	apps := store.NewApplicationRepo(env)
	orders := store.NewOrderRepo(env)

	// Background jobs stop on this context during shutdown.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	var reconciler *reconcile.Reconciler
	if cfg.Sheets.SyncEnabled {
		pem, err := cfg.Google.SigningKey()
		if err != nil {
			slog.Error("failed to load signing key", "error", err)
			os.Exit(1)
		}
		tokens, err := sheets.NewTokenProvider(cfg.Google.ClientEmail, pem, cfg.Google.TokenURL)
		if err != nil {
			slog.Error("failed to initialize token provider", "error", err)
			os.Exit(1)
		}

		reconciler = reconcile.New(tokens, sheets.NewClient(cfg.Sheets.BaseURL), orders, reconcile.Config{
			SpreadsheetID:     cfg.Sheets.SpreadsheetID,
			SheetName:         cfg.Sheets.SheetName,
			MarketplaceColumn: cfg.Sheets.MarketplaceColumn,
			OrderIDColumn:     cfg.Sheets.OrderIDColumn,
			HasHeader:         cfg.Sheets.HasHeader,
		})
		go reconciler.StartScheduler(jobCtx, cfg.Sheets.SyncInterval)
	}

	var sync web.SyncRunner
	if reconciler != nil {
		sync = reconciler
	}
	server := web.NewServer(apps, orders, sync, &cfg.Server)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
