package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist — a missing plan, or a change id that was never
// staged, already confirmed, rejected, or expired.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing plan name, non-contiguous day numbers).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnavailable is returned by Undo when no applied change is left to
// reverse — either nothing was ever applied, or the one-level snapshot was
// already consumed. Handlers should map this to HTTP 409.
var ErrUnavailable = errors.New("unavailable")
