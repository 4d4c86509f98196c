package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/mapsdir/internal/config"
	"github.com/JonMunkholm/mapsdir/internal/core"
	"github.com/JonMunkholm/mapsdir/internal/core/categories" // Register default categories
	"github.com/JonMunkholm/mapsdir/internal/logging"
	"github.com/JonMunkholm/mapsdir/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	// Replace the built-in categories when a file is configured
	if cfg.Datasets.CategoriesFile != "" {
		if _, err := categories.LoadFile(cfg.Datasets.CategoriesFile); err != nil {
			slog.Error("failed to load categories", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("categories registered", "count", core.Count())
	for _, c := range core.All() {
		slog.Debug("category", "id", c.ID, "label", c.Label, "path", c.Path)
	}

	// Fetch stack: scheme routing, then retries for transient failures
	var fetcher core.Fetcher = core.NewRoutingFetcher(&http.Client{}, cfg.Datasets.MaxSize)
	if cfg.Datasets.RetryAttempts > 1 {
		fetcher = &core.RetryFetcher{
			Next:      fetcher,
			Attempts:  cfg.Datasets.RetryAttempts,
			BaseDelay: cfg.Datasets.RetryDelay,
		}
	}

	loader := core.NewLoader(core.Sources{Base: cfg.Datasets.Base}, fetcher, nil, core.LoaderOptions{
		FetchTimeout:  cfg.Datasets.FetchTimeout,
		MaxConcurrent: cfg.Datasets.MaxConcurrent,
	})

	service := core.NewService(loader, core.ServiceOptions{
		Coordinator: core.CoordinatorOptions{
			DefaultCategory:  cfg.View.DefaultCategory,
			ToggleKeepsQuery: !cfg.View.ToggleClearsQuery,
		},
	})

	// Create server with config
	server := web.NewServer(service, cfg.Server)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	if cfg.Datasets.Preload {
		go service.Preload(jobCtx)
	}

	go service.StartSessionSweeper(jobCtx, core.SweepConfig{MaxIdle: cfg.View.SessionIdle})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
