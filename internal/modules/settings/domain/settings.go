package domain

import (
	"slices"

	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
	"github.com/samber/lo"
)

const (
	DefaultMinMuteMinutes = 30
	DefaultMaxMuteMinutes = 60

	// MaxMuteMinutes is 366 days. Telegram treats a longer restriction as
	// permanent.
	MaxMuteMinutes = 366 * 24 * 60
)

// Settings is the moderator-editable configuration persisted between restarts.
// A zero LogChannelID means no log channel; a zero TargetServerID means every
// group is monitored.
type Settings struct {
	LogChannelID   int64   `json:"log_channel_id" koanf:"log_channel_id"`
	MinMuteMinutes int     `json:"min_mute_duration_minutes" koanf:"min_mute_duration_minutes"`
	MaxMuteMinutes int     `json:"max_mute_duration_minutes" koanf:"max_mute_duration_minutes"`
	TargetServerID int64   `json:"target_server_id" koanf:"target_server_id"`
	BypassRoleIDs  []int64 `json:"bypass_roles_ids" koanf:"bypass_roles_ids"`
}

func Default() Settings {
	return Settings{
		MinMuteMinutes: DefaultMinMuteMinutes,
		MaxMuteMinutes: DefaultMaxMuteMinutes,
		BypassRoleIDs:  []int64{},
	}
}

// Validate enforces 1 <= min <= max <= MaxMuteMinutes.
func (s Settings) Validate() error {
	if s.MinMuteMinutes < 1 || s.MaxMuteMinutes < 1 {
		return errors.ErrMuteDurationTooShort
	}
	if s.MaxMuteMinutes > MaxMuteMinutes {
		return errors.ErrMuteDurationTooLong
	}
	if s.MinMuteMinutes > s.MaxMuteMinutes {
		return errors.ErrMuteRangeInverted
	}
	return nil
}

func (s Settings) Clone() Settings {
	c := s
	c.BypassRoleIDs = slices.Clone(s.BypassRoleIDs)
	if c.BypassRoleIDs == nil {
		c.BypassRoleIDs = []int64{}
	}
	return c
}

func (s Settings) LogChannelConfigured() bool {
	return s.LogChannelID != 0
}

func (s Settings) MonitorsGuild(guildID int64) bool {
	return s.TargetServerID == 0 || s.TargetServerID == guildID
}

func (s Settings) HasBypassRole(roles []int64) bool {
	if len(s.BypassRoleIDs) == 0 {
		return false
	}
	return lo.Some(roles, s.BypassRoleIDs)
}
