package verify

import (
	"fmt"
	"time"
)

// Governor is the single logical clock anchored at request start. Stages
// consult it at four checkpoints: the first two abort outright, the last two
// degrade the remaining path instead.
type Governor struct {
	cfg   *Config
	start time.Time
	now   func() time.Time
}

// NewGovernor creates a Governor anchored at the current time.
func NewGovernor(cfg *Config) *Governor {
	return newGovernor(cfg, time.Now)
}

func newGovernor(cfg *Config, now func() time.Time) *Governor {
	return &Governor{
		cfg:   cfg,
		start: now(),
		now:   now,
	}
}

// Elapsed returns the wall-clock time since request start.
func (g *Governor) Elapsed() time.Duration {
	return g.now().Sub(g.start)
}

// CheckExtraction aborts when too much time has passed before text
// extraction could begin.
func (g *Governor) CheckExtraction() error {
	return g.check(g.cfg.AbortExtractionSeconds, "text extraction")
}

// CheckMatching aborts when too much time has passed before the textual
// matcher could launch.
func (g *Governor) CheckMatching() error {
	return g.check(g.cfg.AbortMatchingSeconds, "textual matching")
}

// SkipVisual reports whether the remaining budget forces the visual stage
// to be skipped entirely.
func (g *Governor) SkipVisual() bool {
	return g.exceeded(g.cfg.SkipVisualSeconds)
}

// StopVisual reports whether the visual refinement loop must stop iterating.
func (g *Governor) StopVisual() bool {
	return g.exceeded(g.cfg.StopVisualSeconds)
}

func (g *Governor) check(seconds int, stage string) error {
	if g.exceeded(seconds) {
		return fmt.Errorf("%w: %s could not start within %ds", ErrTimeout, stage, seconds)
	}
	return nil
}

func (g *Governor) exceeded(seconds int) bool {
	return g.Elapsed() > time.Duration(seconds)*time.Second
}
