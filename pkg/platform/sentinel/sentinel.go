package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so callers can translate them into framework-facing results.
//
// These represent factual states about records, not transport failures:
// - ErrNotFound: the targeted document does not exist
// - ErrConflict: a uniqueness rule was violated (duplicate login pair, duplicate id)
// - ErrInvalidArgument: a required input was absent or empty; raised before any I/O
//
// Driver-level failures (timeout, connectivity loss) pass through unwrapped;
// retry policy belongs to the caller, not the store.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)
