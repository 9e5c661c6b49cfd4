package repository

import (
	"sync"

	"github.com/reshetovitsme/tg-moderation-relay/internal/modules/audit/domain"
)

const DefaultCapacity = 200

// MemoryStorage is a fixed-size ring of the latest records. Older records
// are overwritten; nothing survives a restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []domain.Record
	next    int
	full    bool
}

func NewMemoryStorage(capacity int) Repository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStorage{records: make([]domain.Record, capacity)}
}

func (s *MemoryStorage) Append(record domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[s.next] = record
	s.next = (s.next + 1) % len(s.records)
	if s.next == 0 {
		s.full = true
	}
}

// Recent returns up to limit records, newest first. A non-positive limit
// returns everything held.
func (s *MemoryStorage) Recent(limit int) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = len(s.records)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]domain.Record, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.records)) % len(s.records)
		out = append(out, s.records[idx])
	}
	return out
}
