package store

import "errors"

// Store-level failure kinds. The stores report "record absent" and rule
// violations as distinct errors so callers and tests can tell them apart;
// the HTTP boundary decides how each one surfaces.
var (
	ErrLeadNotFound         = errors.New("lead not found")
	ErrStageNotFound        = errors.New("stage not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("a user with this email already exists")
	ErrInvalidTransition    = errors.New("invalid stage status transition")
	ErrInvalidInterval      = errors.New("timeline interval is not an allowed value")
	ErrAuthenticationFailed = errors.New("authentication failed")
)
