package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	auditRepo "github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/repository"
	auditService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/service"
	classifierService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/classifier/service"
	cooldownService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/cooldown/service"
	enforcementService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/enforcement/service"
	moderationService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/service"
	settingsRepo "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/repository"
	settingsService "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/service"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/config"
	httpServer "github.com/reshetovitsme/tg-moderation-relay/internal/transport/http"
	"github.com/reshetovitsme/tg-moderation-relay/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

const getMeTimeout = 30 * time.Second

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	do.Provide(injector, func(i do.Injector) (settingsRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := settingsRepo.NewFileStorage(cfg.SettingsPath)
		if err != nil {
			return nil, oops.With("settings_path", cfg.SettingsPath, "context", "failed to initialize settings repository").Wrap(err)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (*settingsService.Service, error) {
		repo := do.MustInvoke[settingsRepo.Repository](i)
		return settingsService.New(repo), nil
	})

	do.Provide(injector, func(i do.Injector) (auditRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return auditRepo.NewMemoryStorage(cfg.AuditBufferSize), nil
	})

	do.Provide(injector, func(i do.Injector) (*auditService.Service, error) {
		repo := do.MustInvoke[auditRepo.Repository](i)
		return auditService.New(repo), nil
	})

	do.Provide(injector, func(i do.Injector) (*cooldownService.Tracker, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cooldownService.New(cfg.CooldownCapacity), nil
	})

	do.Provide(injector, func(i do.Injector) (*classifierService.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return classifierService.New(cfg.APIURLBase, cfg.APIKey,
			classifierService.WithLogger(slog.Default().With("subsystem", "classifier"))), nil
	})

	do.Provide(injector, func(i do.Injector) (*telegram.Platform, error) {
		return telegram.NewPlatform(), nil
	})

	do.Provide(injector, func(i do.Injector) (*enforcementService.Executor, error) {
		platform := do.MustInvoke[*telegram.Platform](i)
		audits := do.MustInvoke[*auditService.Service](i)
		return enforcementService.New(platform, audits), nil
	})

	do.Provide(injector, func(i do.Injector) (*moderationService.Pipeline, error) {
		return moderationService.NewPipeline(
			moderationService.NewPolicy(),
			do.MustInvoke[*cooldownService.Tracker](i),
			do.MustInvoke[*classifierService.Client](i),
			do.MustInvoke[*settingsService.Service](i),
			do.MustInvoke[*enforcementService.Executor](i),
			do.MustInvoke[*telegram.Platform](i),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*telegram.Handler, error) {
		pipeline := do.MustInvoke[*moderationService.Pipeline](i)
		settings := do.MustInvoke[*settingsService.Service](i)
		platform := do.MustInvoke[*telegram.Platform](i)
		return telegram.New(pipeline, settings, platform), nil
	})

	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		audits := do.MustInvoke[*auditService.Service](i)
		settings := do.MustInvoke[*settingsService.Service](i)
		server := httpServer.New(cfg, audits, settings)
		server.SetLogger(slog.Default())
		return server, nil
	})

	// The bot is created last: the platform needs it and it needs the handler.
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		handler := do.MustInvoke[*telegram.Handler](i)

		opts := []bot.Option{
			bot.WithServerURL(cfg.TelegramAPIURL),
			bot.WithSkipGetMe(),
			bot.WithWorkers(cfg.BotWorkers),
			bot.WithMiddlewares(handler.Middleware),
			bot.WithDefaultHandler(handler.HandleUpdate),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), getMeTimeout)
		defer cancel()
		me, err := b.GetMe(ctx)
		if err != nil {
			return nil, oops.With("context", "failed to log in, check TELEGRAM_BOT_TOKEN").Wrap(err)
		}
		slog.Info("Logged in", "username", me.Username, "id", me.ID)

		handler.RegisterCommands(b)

		platform := do.MustInvoke[*telegram.Platform](i)
		platform.SetBot(b, me.ID, me.Username)

		return b, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(ctx context.Context, injector do.Injector) error {
	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Error stopping HTTP server", "error", err)
		}
	}

	if client, err := do.Invoke[*classifierService.Client](injector); err == nil && client != nil {
		if err := client.Close(); err != nil {
			return oops.With("context", "failed to close classifier client").Wrap(err)
		}
	}

	return nil
}
