package repository

import (
	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/settings/domain"
)

// Repository persists the moderation settings record.
type Repository interface {
	Load() (domain.Settings, error)
	Save(settings domain.Settings) error
}
