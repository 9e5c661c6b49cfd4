package errors

import "errors"

var (
	ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")

	ErrMuteDurationTooShort = errors.New("mute durations must be at least 1 minute")
	ErrMuteDurationTooLong  = errors.New("mute durations cannot exceed 366 days")
	ErrMuteRangeInverted    = errors.New("minimum duration cannot be greater than maximum duration")
	ErrRoleAlreadyBypassed  = errors.New("role is already in the bypass list")
	ErrRoleNotBypassed      = errors.New("role is not in the bypass list")

	// Platform failures, translated from transport errors at the adapter boundary.
	ErrForbidden   = errors.New("forbidden by platform")
	ErrBotNotReady = errors.New("bot not initialized")
)
