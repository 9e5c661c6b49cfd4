package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/tg-moderation-relay/internal/di"
	settingsService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/service"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/config"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/logging"
	httpServer "github.com/reshetovitsme/tg-moderation-relay/internal/transport/http"
	"github.com/reshetovitsme/tg-moderation-relay/internal/transport/telegram"
	"github.com/samber/do/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logFile, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		slog.Error("Failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	if cfg.APIKey == "" {
		slog.Warn("API_KEY not found in environment variables. Classification calls will fail until it is set.")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := do.Invoke[*bot.Bot](injector)
	if err != nil {
		slog.Error("Failed to start telegram bot", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := di.Shutdown(shutdownCtx, injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	settings := do.MustInvoke[*settingsService.Service](injector)
	platform := do.MustInvoke[*telegram.Platform](injector)
	platform.CheckPermissions(ctx, settings.Snapshot())

	server := do.MustInvoke[*httpServer.Server](injector)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("HTTP server stopped", "error", err)
			cancel()
		}
	}()

	slog.Info("Application started", "port", cfg.HTTPPort, "env", cfg.AppEnv)
	slog.Info("Press Ctrl+C to stop")

	b.Start(ctx)

	slog.Info("Shutting down...")
}
