package store

import "errors"

// Storage failures are classified into three sentinel errors. Callers match
// with errors.Is; the detail text of the underlying failure is carried in
// the wrapping error.
var (
	// ErrUnavailable means the environment could not be opened or mapped.
	// Fatal at process start; not recoverable locally.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrTxFailed means a write transaction did not commit. The store is
	// unchanged; there is no automatic retry.
	ErrTxFailed = errors.New("transaction failed")

	// ErrCodec means stored bytes did not decode into the expected record
	// type. This indicates corruption or version skew and is surfaced as-is,
	// never coerced.
	ErrCodec = errors.New("undecodable record")
)
