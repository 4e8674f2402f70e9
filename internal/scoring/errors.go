package scoring

import "errors"

// Scoring errors.
var (
	ErrInvalidVerdict = errors.New("invalid visual verdict")
	ErrEmptyResponse  = errors.New("scoring service returned empty response")
)
