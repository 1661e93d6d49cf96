package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	// ErrSourceNotFound marks a load whose source file is missing or unreachable.
	ErrSourceNotFound = errors.New("dataset source not found")

	// ErrMalformedSource marks a load that produced zero usable records,
	// either because required header columns are missing or because every
	// row failed to parse. Per-row failures below that bar are skipped and
	// counted, never escalated.
	ErrMalformedSource = errors.New("dataset source malformed")

	// ErrRecordNotFound marks a lookup for an id absent from the snapshot.
	ErrRecordNotFound = errors.New("record not found")

	// ErrReloadInProgress marks a rejected reload while another is in flight.
	ErrReloadInProgress = errors.New("reload already in progress")

	// ErrNotLoaded marks reads before any snapshot has been loaded successfully.
	ErrNotLoaded = errors.New("dataset not loaded")
)
