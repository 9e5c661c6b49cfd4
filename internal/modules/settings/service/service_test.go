package service

import (
	stderrors "errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/repository"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu      sync.Mutex
	stored  domain.Settings
	loadErr error
	saveErr error
	saves   int
}

func (r *memRepo) Load() (domain.Settings, error) {
	return r.stored, r.loadErr
}

func (r *memRepo) Save(settings domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = settings
	return nil
}

func TestNewFallsBackToDefaults(t *testing.T) {
	svc := New(&memRepo{loadErr: stderrors.New("corrupt")})
	assert.Equal(t, domain.Default(), svc.Snapshot())

	svc = New(&memRepo{stored: domain.Settings{MinMuteMinutes: 10, MaxMuteMinutes: 1}})
	assert.Equal(t, domain.Default(), svc.Snapshot())
}

func TestSetMuteDurationValidates(t *testing.T) {
	repo := &memRepo{stored: domain.Default()}
	svc := New(repo)

	_, _, err := svc.SetMuteDuration(0, 10)
	assert.ErrorIs(t, err, errors.ErrMuteDurationTooShort)

	_, _, err = svc.SetMuteDuration(20, 10)
	assert.ErrorIs(t, err, errors.ErrMuteRangeInverted)
	assert.Equal(t, 0, repo.saves, "invalid updates must not be persisted")

	oldMin, oldMax, err := svc.SetMuteDuration(5, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMinMuteMinutes, oldMin)
	assert.Equal(t, domain.DefaultMaxMuteMinutes, oldMax)
	assert.Equal(t, 5, svc.Snapshot().MinMuteMinutes)
	assert.Equal(t, 10, repo.stored.MaxMuteMinutes)
}

func TestBypassRoles(t *testing.T) {
	svc := New(&memRepo{stored: domain.Default()})

	require.NoError(t, svc.AddBypassRole(2))
	assert.ErrorIs(t, svc.AddBypassRole(2), errors.ErrRoleAlreadyBypassed)
	assert.Equal(t, []int64{2}, svc.Snapshot().BypassRoleIDs)

	require.NoError(t, svc.RemoveBypassRole(2))
	assert.ErrorIs(t, svc.RemoveBypassRole(2), errors.ErrRoleNotBypassed)
	assert.Empty(t, svc.Snapshot().BypassRoleIDs)
}

func TestSnapshotIsNotAffectedByLaterUpdates(t *testing.T) {
	svc := New(&memRepo{stored: domain.Default()})
	require.NoError(t, svc.AddBypassRole(1))

	before := svc.Snapshot()
	require.NoError(t, svc.AddBypassRole(2))

	assert.Equal(t, []int64{1}, before.BypassRoleIDs)
	assert.Equal(t, []int64{1, 2}, svc.Snapshot().BypassRoleIDs)
}

func TestPersistFailureStillPublishes(t *testing.T) {
	svc := New(&memRepo{stored: domain.Default(), saveErr: stderrors.New("disk full")})

	old, err := svc.SetTargetServer(-100500)
	assert.Error(t, err)
	assert.Equal(t, int64(0), old)
	assert.Equal(t, int64(-100500), svc.Snapshot().TargetServerID)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_config.json")
	repo, err := repository.NewFileStorage(path)
	require.NoError(t, err)

	svc := New(repo)
	_, err = svc.SetLogChannel(-100777)
	require.NoError(t, err)
	require.NoError(t, svc.AddBypassRole(2))

	reloaded := New(repo)
	assert.Equal(t, int64(-100777), reloaded.Snapshot().LogChannelID)
	assert.Equal(t, []int64{2}, reloaded.Snapshot().BypassRoleIDs)
}

func TestConcurrentUpdates(t *testing.T) {
	svc := New(&memRepo{stored: domain.Default()})

	var wg sync.WaitGroup
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, svc.AddBypassRole(id))
			_ = svc.Snapshot().HasBypassRole([]int64{id})
		}(i)
	}
	wg.Wait()

	assert.Len(t, svc.Snapshot().BypassRoleIDs, 20)
}
