package domain

import (
	"testing"

	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Default().Validate())
	assert.NoError(Settings{MinMuteMinutes: 1, MaxMuteMinutes: 1}.Validate())
	assert.ErrorIs(Settings{MinMuteMinutes: 0, MaxMuteMinutes: 5}.Validate(), errors.ErrMuteDurationTooShort)
	assert.ErrorIs(Settings{MinMuteMinutes: 5, MaxMuteMinutes: 0}.Validate(), errors.ErrMuteDurationTooShort)
	assert.ErrorIs(Settings{MinMuteMinutes: 10, MaxMuteMinutes: 5}.Validate(), errors.ErrMuteRangeInverted)
}

func TestValidateCapsMuteAtTelegramLimit(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(527040, MaxMuteMinutes)
	assert.NoError(Settings{MinMuteMinutes: 1, MaxMuteMinutes: MaxMuteMinutes}.Validate())
	assert.ErrorIs(Settings{MinMuteMinutes: 1, MaxMuteMinutes: MaxMuteMinutes + 1}.Validate(), errors.ErrMuteDurationTooLong)
	assert.ErrorIs(Settings{MinMuteMinutes: 600000, MaxMuteMinutes: 600000}.Validate(), errors.ErrMuteDurationTooLong)
}

func TestMonitorsGuild(t *testing.T) {
	all := Default()
	assert.True(t, all.MonitorsGuild(-100123))
	assert.True(t, all.MonitorsGuild(0))

	one := Default()
	one.TargetServerID = -100123
	assert.True(t, one.MonitorsGuild(-100123))
	assert.False(t, one.MonitorsGuild(-100999))
}

func TestHasBypassRole(t *testing.T) {
	s := Default()
	assert.False(t, s.HasBypassRole([]int64{1, 2}))

	s.BypassRoleIDs = []int64{2}
	assert.True(t, s.HasBypassRole([]int64{1, 2}))
	assert.False(t, s.HasBypassRole([]int64{3}))
	assert.False(t, s.HasBypassRole(nil))
}

func TestCloneDetachesRoles(t *testing.T) {
	s := Default()
	s.BypassRoleIDs = []int64{1}

	c := s.Clone()
	c.BypassRoleIDs[0] = 9

	assert.Equal(t, int64(1), s.BypassRoleIDs[0])
}
