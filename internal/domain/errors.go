package domain

import "errors"

// Error kinds surfaced by services. All are recoverable at the call
// site; handlers map them to response envelopes.
var (
	ErrNotFound        = errors.New("not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrNoActiveBinding = errors.New("no active patient assignment for device")
	ErrValidation      = errors.New("validation failed")
)
