package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	auditdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/domain"
	settingsdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
)

// Platform is the set of chat actions enforcement needs. Implementations
// report permission failures as errors.ErrForbidden.
type Platform interface {
	CanMute(ctx context.Context, guildID int64) (bool, error)
	Mute(ctx context.Context, guildID, userID int64, until time.Time, reason string) error
	SendDirect(ctx context.Context, userID int64, text string) error
	CanPostTo(ctx context.Context, chatID int64) (bool, error)
	PostAudit(ctx context.Context, chatID int64, record auditdomain.Record) error
}

// AuditRecorder keeps a local copy of every audit record produced.
type AuditRecorder interface {
	Record(record auditdomain.Record)
}

type Executor struct {
	platform Platform
	audits   AuditRecorder
	now      func() time.Time
}

type Option func(*Executor)

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

func New(platform Platform, audits AuditRecorder, opts ...Option) *Executor {
	e := &Executor{
		platform: platform,
		audits:   audits,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enforce applies a mute decision: mute, notify the author, then audit.
// Each effect is attempted whatever happened to the others.
func (e *Executor) Enforce(ctx context.Context, msg domain.Message, decision domain.Decision, settings settingsdomain.Settings) domain.Enforcement {
	var result domain.Enforcement
	if decision.Action != domain.ActionMute {
		return result
	}

	logger := slog.With("user_id", decision.UserID, "user", msg.Author.DisplayName, "guild_id", msg.GuildID)

	result.Muted = e.mute(ctx, logger, msg, decision)
	result.Notified = e.notifyFlagged(ctx, logger, msg, decision, result.Muted)

	record := auditdomain.Record{
		UserID:          decision.UserID,
		UserName:        msg.Author.DisplayName,
		FlaggedWord:     decision.FlaggedWord,
		Reason:          decision.Reason,
		DurationMinutes: decision.DurationMinutes,
		GuildID:         msg.GuildID,
		GuildName:       msg.GuildName,
		ChannelID:       msg.ChannelID,
		ChannelName:     msg.ChannelName,
		Muted:           result.Muted,
		Excerpt:         auditdomain.Excerpt(msg.Text),
		MessageID:       msg.ID,
		CreatedAt:       e.now().UTC(),
	}
	if e.audits != nil {
		e.audits.Record(record)
	}
	result.Audited = e.postAudit(ctx, logger, settings, record)

	return result
}

func (e *Executor) mute(ctx context.Context, logger *slog.Logger, msg domain.Message, decision domain.Decision) bool {
	canMute, err := e.platform.CanMute(ctx, msg.GuildID)
	if err != nil {
		logger.Error("Error checking mute permission", "error", err)
		return false
	}
	if !canMute {
		logger.Error("Bot lacks permission to restrict members, cannot mute", "guild", msg.GuildName)
		text := fmt.Sprintf("I tried to mute you in %s but I don't have the necessary permissions (Ban users). Please contact a group administrator.", msg.GuildName)
		e.sendDirect(ctx, logger, decision.UserID, text)
		return false
	}

	until := e.now().Add(time.Duration(decision.DurationMinutes) * time.Minute)
	if err := e.platform.Mute(ctx, msg.GuildID, decision.UserID, until, decision.MuteReason); err != nil {
		if stderrors.Is(err, errors.ErrForbidden) {
			logger.Error("Platform refused to mute user", "error", err)
		} else {
			logger.Error("Error muting user", "error", err)
		}
		return false
	}

	logger.Info("Muted user", "duration_minutes", decision.DurationMinutes, "reason", decision.MuteReason)
	return true
}

func (e *Executor) notifyFlagged(ctx context.Context, logger *slog.Logger, msg domain.Message, decision domain.Decision, muted bool) bool {
	verb := "flagged"
	if muted {
		verb = "timed out"
	}
	text := fmt.Sprintf("Your message in %s was flagged for moderation.\nReason: %s\nFlagged Word: %s\nYou have been %s for %d minutes.",
		msg.GuildName, decision.Reason, decision.FlaggedWord, verb, decision.DurationMinutes)
	return e.sendDirect(ctx, logger, decision.UserID, text)
}

func (e *Executor) sendDirect(ctx context.Context, logger *slog.Logger, userID int64, text string) bool {
	if err := e.platform.SendDirect(ctx, userID, text); err != nil {
		if stderrors.Is(err, errors.ErrForbidden) {
			logger.Warn("Could not send DM, user might not have started the bot", "error", err)
		} else {
			logger.Error("Error sending DM", "error", err)
		}
		return false
	}
	logger.Info("DM sent")
	return true
}

func (e *Executor) postAudit(ctx context.Context, logger *slog.Logger, settings settingsdomain.Settings, record auditdomain.Record) bool {
	if !settings.LogChannelConfigured() {
		logger.Info("Log channel not configured, skipping event logging")
		return false
	}

	logger = logger.With("log_channel_id", settings.LogChannelID)
	canPost, err := e.platform.CanPostTo(ctx, settings.LogChannelID)
	if err != nil {
		logger.Error("Error checking log channel permission", "error", err)
		return false
	}
	if !canPost {
		logger.Error("Bot lacks permission to send messages in log channel, cannot log event")
		return false
	}

	if err := e.platform.PostAudit(ctx, settings.LogChannelID, record); err != nil {
		logger.Error("Error logging event", "error", err)
		return false
	}
	logger.Info("Event logged")
	return true
}
