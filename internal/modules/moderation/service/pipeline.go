package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	classifierdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/classifier/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/domain"
	settingsdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
)

type Classifier interface {
	Classify(ctx context.Context, text string) classifierdomain.Verdict
}

// CooldownGate records an action and reports whether the user was free to act.
type CooldownGate interface {
	Acquire(userID int64) bool
}

type SettingsSource interface {
	Snapshot() settingsdomain.Settings
}

type Enforcer interface {
	Enforce(ctx context.Context, msg domain.Message, decision domain.Decision, settings settingsdomain.Settings) domain.Enforcement
}

type Notifier interface {
	SendDirect(ctx context.Context, userID int64, text string) error
}

// Result describes what happened to one message. Forward tells the caller
// whether the message should continue to command dispatch.
type Result struct {
	Outcome     domain.Outcome
	Verdict     classifierdomain.Verdict
	Decision    domain.Decision
	Enforcement domain.Enforcement
	Forward     bool
}

// Pipeline runs every inbound message through the gates, the classifier,
// the policy and enforcement. It is safe for concurrent use.
type Pipeline struct {
	policy     *Policy
	cooldown   CooldownGate
	classifier Classifier
	settings   SettingsSource
	enforcer   Enforcer
	notifier   Notifier
}

func NewPipeline(policy *Policy, cooldown CooldownGate, classifier Classifier, settings SettingsSource, enforcer Enforcer, notifier Notifier) *Pipeline {
	return &Pipeline{
		policy:     policy,
		cooldown:   cooldown,
		classifier: classifier,
		settings:   settings,
		enforcer:   enforcer,
		notifier:   notifier,
	}
}

// Handle never panics and never returns an error; every failure ends in an
// outcome.
func (p *Pipeline) Handle(ctx context.Context, msg domain.Message) (result Result) {
	logger := slog.With("user_id", msg.Author.ID, "user", msg.Author.DisplayName, "chat_id", msg.ChannelID, "message_id", msg.ID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected error while moderating message", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			result = Result{Outcome: domain.OutcomeFailed, Forward: true}
		}
		messagesHandled.WithLabelValues(result.Outcome.String()).Inc()
	}()

	settings := p.settings.Snapshot()

	if outcome, pass := p.policy.Gate(msg, settings); !pass {
		if outcome == domain.OutcomeIgnoredBypass {
			logger.Info("User has a bypass role, skipping moderation")
		}
		return Result{Outcome: outcome}
	}

	if !p.cooldown.Acquire(msg.Author.ID) {
		logger.Info("User is on cooldown, skipping classification")
		p.notifyCooldown(ctx, logger, msg)
		return Result{Outcome: domain.OutcomeCooldown, Forward: true}
	}

	logger.Info("Processing message", "chat", msg.ChannelName)
	logger.Debug("Message text", "text", msg.Text)

	result.Forward = true
	result.Verdict = p.classifier.Classify(ctx, msg.Text)
	if result.Verdict.Failed() {
		logger.Error("Failed to get valid classification for message", "error", result.Verdict.Error)
		result.Outcome = domain.OutcomeClassificationError
		return result
	}

	result.Decision = p.policy.Decide(msg, settings, result.Verdict)
	switch result.Decision.Action {
	case domain.ActionNone:
		result.Outcome = domain.OutcomeNotFlagged
		return result
	case domain.ActionFlagOnly:
		logger.Warn("Message flagged but author is not a group member, cannot mute",
			"flagged_word", result.Verdict.FlaggedWord, "reason", result.Verdict.Reason)
		result.Outcome = domain.OutcomeNotMember
		return result
	}

	logger.Warn("Message flagged", "flagged_word", result.Verdict.FlaggedWord, "reason", result.Verdict.Reason,
		"duration_minutes", result.Decision.DurationMinutes)

	result.Enforcement = p.enforcer.Enforce(ctx, msg, result.Decision, settings)
	result.Outcome = domain.OutcomeEnforced
	countEffects(result.Enforcement)
	return result
}

func (p *Pipeline) notifyCooldown(ctx context.Context, logger *slog.Logger, msg domain.Message) {
	text := fmt.Sprintf("Hello %s, your recent message was not sent for moderation because you're on cooldown. "+
		"Please wait a moment before sending another message that might trigger moderation.", msg.Author.DisplayName)
	if err := p.notifier.SendDirect(ctx, msg.Author.ID, text); err != nil {
		logger.Warn("Could not send cooldown notice", "error", err)
	}
}

func countEffects(e domain.Enforcement) {
	enforcementEffects.WithLabelValues("mute", strconv.FormatBool(e.Muted)).Inc()
	enforcementEffects.WithLabelValues("notify", strconv.FormatBool(e.Notified)).Inc()
	enforcementEffects.WithLabelValues("audit", strconv.FormatBool(e.Audited)).Inc()
}
