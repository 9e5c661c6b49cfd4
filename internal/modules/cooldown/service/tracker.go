package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultWindow   = 5 * time.Second
	DefaultCapacity = 100_000
)

// Tracker is a per-user rate gate. Entries expire once their window has
// elapsed and the least recently active users are evicted past capacity, so
// memory stays bounded however many distinct users are seen.
type Tracker struct {
	window  time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries *expirable.LRU[int64, time.Time]
}

type Option func(*Tracker)

// WithWindow overrides the 5 second cooldown window.
func WithWindow(window time.Duration) Option {
	return func(t *Tracker) {
		t.window = window
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a tracker holding at most capacity users.
func New(capacity int, opts ...Option) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	t := &Tracker{
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.entries = expirable.NewLRU[int64, time.Time](capacity, nil, t.window)
	return t
}

// IsOnCooldown reports whether the user's last recorded action is less than
// one window old.
func (t *Tracker) IsOnCooldown(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.onCooldown(userID, t.now())
}

// RecordAction stamps the user's last action with the current time.
func (t *Tracker) RecordAction(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries.Add(userID, t.now())
}

// Acquire records an action and returns true unless the user is on cooldown.
// Check and record happen under one lock so overlapping messages from the
// same user cannot both pass.
func (t *Tracker) Acquire(userID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.onCooldown(userID, now) {
		return false
	}
	t.entries.Add(userID, now)
	return true
}

// Len is the number of users currently tracked.
func (t *Tracker) Len() int {
	return t.entries.Len()
}

func (t *Tracker) onCooldown(userID int64, now time.Time) bool {
	last, ok := t.entries.Peek(userID)
	if !ok {
		return false
	}
	return now.Sub(last) < t.window
}
