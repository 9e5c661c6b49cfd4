package repository

import "github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/domain"

// Repository keeps recently emitted audit records.
type Repository interface {
	Append(record domain.Record)
	Recent(limit int) []domain.Record
}
