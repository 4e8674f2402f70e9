package safefetch

import "errors"

// Fetch errors. ErrUnsafeURL covers every pre-fetch validation failure;
// ErrFetch covers everything that goes wrong once the request is allowed.
var (
	ErrUnsafeURL = errors.New("url failed safety validation")
	ErrFetch     = errors.New("image fetch failed")
)
