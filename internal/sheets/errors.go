package sheets

import "errors"

var (
	// ErrCredential means the bearer credential could not be produced:
	// malformed signing key, failed exchange, or a token response without an
	// access_token field. A single failed exchange is fatal to the calling
	// operation; there is no retry.
	ErrCredential = errors.New("credential exchange failed")

	// ErrSource means a sheet read failed: transport error, non-success
	// response, or a response body without the expected values. The wrapping
	// error carries the response body as diagnostic detail.
	ErrSource = errors.New("sheet source unavailable")
)
