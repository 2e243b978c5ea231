package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vinayskanse/blocky/internal/api"
	"github.com/vinayskanse/blocky/internal/config"
	"github.com/vinayskanse/blocky/internal/service"
	"github.com/vinayskanse/blocky/internal/storage/sql"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// SQLite needs the parent directory to exist.
	if cfg.Database.Driver == "sqlite3" {
		dir := filepath.Dir(cfg.Database.DSN)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Error("failed to create data directory", "dir", dir, "error", err)
				os.Exit(1)
			}
		}
	}

	store, err := sql.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	blocklist := service.NewBlocklistService(store, log)
	if err := blocklist.Start(cfg.Blocklist.RefreshCron); err != nil {
		log.Error("failed to start blocklist refresh", "error", err)
		os.Exit(1)
	}
	defer blocklist.Stop()

	router := api.NewRouter(store, blocklist, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info("starting blocky daemon", "addr", cfg.Server.Addr())

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
