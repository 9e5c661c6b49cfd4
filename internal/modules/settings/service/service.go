package service

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/repository"
	"github.com/reshetovitsme/tg-moderation-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service owns the live settings. Readers get an immutable snapshot; writers
// are serialised and publish a fresh copy before persisting it.
type Service struct {
	repo    repository.Repository
	current atomic.Pointer[domain.Settings]
	mu      sync.Mutex
}

// New loads persisted settings, falling back to defaults when the stored
// record is unreadable or invalid.
func New(repo repository.Repository) *Service {
	s := &Service{repo: repo}

	settings, err := repo.Load()
	if err != nil {
		slog.Error("Error loading settings, using defaults", "error", err)
		settings = domain.Default()
	}
	if err := settings.Validate(); err != nil {
		slog.Error("Stored settings are invalid, using defaults", "error", err,
			"min", settings.MinMuteMinutes, "max", settings.MaxMuteMinutes)
		settings = domain.Default()
	}

	s.current.Store(&settings)
	return s
}

// Snapshot returns the current settings. Callers must not mutate BypassRoleIDs.
func (s *Service) Snapshot() domain.Settings {
	return *s.current.Load()
}

// SetLogChannel returns the previous log channel id.
func (s *Service) SetLogChannel(channelID int64) (int64, error) {
	old, _, err := s.update(func(next *domain.Settings) error {
		next.LogChannelID = channelID
		return nil
	})
	return old.LogChannelID, err
}

// SetMuteDuration returns the previous bounds.
func (s *Service) SetMuteDuration(minMinutes, maxMinutes int) (int, int, error) {
	old, _, err := s.update(func(next *domain.Settings) error {
		next.MinMuteMinutes = minMinutes
		next.MaxMuteMinutes = maxMinutes
		return nil
	})
	return old.MinMuteMinutes, old.MaxMuteMinutes, err
}

// SetTargetServer returns the previous target; 0 means all groups.
func (s *Service) SetTargetServer(guildID int64) (int64, error) {
	old, _, err := s.update(func(next *domain.Settings) error {
		next.TargetServerID = guildID
		return nil
	})
	return old.TargetServerID, err
}

func (s *Service) AddBypassRole(roleID int64) error {
	_, _, err := s.update(func(next *domain.Settings) error {
		if slices.Contains(next.BypassRoleIDs, roleID) {
			return errors.ErrRoleAlreadyBypassed
		}
		next.BypassRoleIDs = append(next.BypassRoleIDs, roleID)
		return nil
	})
	return err
}

func (s *Service) RemoveBypassRole(roleID int64) error {
	_, _, err := s.update(func(next *domain.Settings) error {
		if !slices.Contains(next.BypassRoleIDs, roleID) {
			return errors.ErrRoleNotBypassed
		}
		next.BypassRoleIDs = lo.Without(next.BypassRoleIDs, roleID)
		return nil
	})
	return err
}

func (s *Service) update(mutate func(next *domain.Settings) error) (domain.Settings, domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.Snapshot()
	next := old.Clone()

	if err := mutate(&next); err != nil {
		return old, old, err
	}
	if err := next.Validate(); err != nil {
		return old, old, err
	}

	s.current.Store(&next)

	if err := s.repo.Save(next); err != nil {
		return old, next, oops.With("context", "failed to persist settings").Wrap(err)
	}

	return old, next, nil
}
