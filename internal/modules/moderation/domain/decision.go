package domain

import "fmt"

// Decision is the enforcement the policy asks for after a verdict.
type Decision struct {
	Action          Action
	UserID          int64
	DurationMinutes int
	FlaggedWord     string
	Reason          string
	// MuteReason is the justification recorded with the mute.
	MuteReason string
}

func NoAction() Decision {
	return Decision{Action: ActionNone}
}

func MuteReason(flaggedWord, reason string) string {
	return fmt.Sprintf("Flagged for '%s' (%s)", flaggedWord, reason)
}

// Enforcement reports which effects of a mute decision took place.
type Enforcement struct {
	Muted    bool
	Notified bool
	Audited  bool
}
