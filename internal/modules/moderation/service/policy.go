package service

import (
	"math/rand/v2"

	classifierdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/classifier/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/moderation/domain"
	settingsdomain "github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
)

// Policy holds the pure moderation rules. It performs no I/O.
type Policy struct {
	intN func(n int) int
}

type PolicyOption func(*Policy)

// WithRand makes mute durations deterministic, for tests.
func WithRand(r *rand.Rand) PolicyOption {
	return func(p *Policy) {
		p.intN = r.IntN
	}
}

func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{intN: rand.IntN}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Gate applies the author filters that run before any network call, in
// order: automated author, guild scope, bypass role. It returns the ignore
// outcome and false when the message must be dropped.
func (p *Policy) Gate(msg domain.Message, settings settingsdomain.Settings) (domain.Outcome, bool) {
	if msg.Author.IsBot {
		return domain.OutcomeIgnoredAutomated, false
	}
	if msg.InGuild() && !settings.MonitorsGuild(msg.GuildID) {
		return domain.OutcomeIgnoredGuild, false
	}
	if msg.Author.IsMember() && settings.HasBypassRole(msg.Author.Roles()) {
		return domain.OutcomeIgnoredBypass, false
	}
	return "", true
}

// Decide maps a verdict to an enforcement decision.
func (p *Policy) Decide(msg domain.Message, settings settingsdomain.Settings, verdict classifierdomain.Verdict) domain.Decision {
	if verdict.Failed() || !verdict.Flagged {
		return domain.NoAction()
	}

	decision := domain.Decision{
		Action:      domain.ActionFlagOnly,
		UserID:      msg.Author.ID,
		FlaggedWord: verdict.FlaggedWord,
		Reason:      verdict.Reason,
	}
	if !msg.Author.IsMember() {
		return decision
	}

	decision.Action = domain.ActionMute
	decision.DurationMinutes = p.muteDuration(settings.MinMuteMinutes, settings.MaxMuteMinutes)
	decision.MuteReason = domain.MuteReason(verdict.FlaggedWord, verdict.Reason)
	return decision
}

// muteDuration draws uniformly from [lo, hi].
func (p *Policy) muteDuration(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.intN(hi-lo+1)
}
