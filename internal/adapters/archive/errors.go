package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrClosed = errors.New("archive closed")

	// ErrDisabled is surfaced by callers when no archive is configured.
	ErrDisabled = errors.New("analysis archive disabled")
)
