// Package verify implements the label verification pipeline: staged,
// time-budgeted processing of a candidate label image against the active
// reference corpus, with concurrent textual matching, optional visual
// refinement, and deterministic score fusion. It is built as a state graph
// (acquire → analyze → match → refine? → finalize).
package verify

import "errors"

// Sentinel errors for pipeline operations.
var (
	ErrInvalidInput = errors.New("no valid image source provided")
	ErrTimeout      = errors.New("verification time budget exceeded")
	ErrNoCandidate  = errors.New("no reference candidate produced a textual match")
)
