package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/adaptive-budget/backend/internal/config"
	"example.com/adaptive-budget/backend/internal/database"
	"example.com/adaptive-budget/backend/internal/engine"
	"example.com/adaptive-budget/backend/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	tables, err := loadTables(cfg.Engine)
	if err != nil {
		logger.Error("failed to load engine tables", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		db.Close()
	}()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logger.Error("failed to prepare schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	e, err := server.New(cfg, logger, db, tables)
	if err != nil {
		logger.Error("failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr), slog.String("ai_provider", cfg.AI.Provider))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = os.Setenv("ENV_FILE", ".env")
		return
	}

	if _, err := os.Stat("../.env"); err == nil {
		_ = os.Setenv("ENV_FILE", "../.env")
	}
}

func loadTables(cfg config.EngineConfig) (engine.Tables, error) {
	if cfg.TablesFile == "" {
		return engine.DefaultTables(), nil
	}

	return engine.LoadTables(cfg.TablesFile)
}
