package domain

import "fmt"

const (
	DefaultFlaggedWord = "N/A"
	DefaultReason      = "No reason provided"
)

// Verdict is the outcome of one classification call. Error is set when the
// call could not be completed, in which case the other fields are meaningless.
type Verdict struct {
	Flagged     bool          `json:"flagged"`
	FlaggedWord string        `json:"flagged_word"`
	Reason      string        `json:"reason"`
	Error       *VerdictError `json:"error,omitempty"`
}

type VerdictError struct {
	Kind    ErrorKind `json:"kind"`
	Status  int       `json:"status,omitempty"`
	Message string    `json:"message"`
}

func (e *VerdictError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (v Verdict) Failed() bool {
	return v.Error != nil
}

func Failure(kind ErrorKind, status int, message string) Verdict {
	return Verdict{Error: &VerdictError{Kind: kind, Status: status, Message: message}}
}
