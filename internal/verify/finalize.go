package verify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/vmaretto/sigillo/internal/scoring"
)

// finalizeNode returns a state node that fuses the accumulated signals into
// the final Outcome. When visual refinement was skipped the textual fallback
// stands in as the best match.
func (e *exec) finalizeNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		candidate, err := extractCandidate(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		text, err := extractText(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		report, err := extractReport(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		best, err := resolveBest(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		e.stream.Progress(90, "fusing scores", nil)

		var verdict *scoring.Verdict
		if best.Visual != nil {
			verdict = &best.Visual.Verdict
		}

		result := e.rt.Config.Decide(best.Combined, verdict)
		bestID := best.Textual.Label.ID

		outcome := &Outcome{
			Image:         candidate,
			ExtractedText: text,
			Result:        result,
			MatchPercent:  int(math.Round(best.Combined)),
			Violations:    MergeViolations(report, &best),
			Note:          report.Note,
			BestLabelID:   &bestID,
			Visual:        best.Visual,
			CompletedAt:   time.Now(),
		}

		e.rt.Logger.InfoContext(
			ctx, "finalize node complete",
			"result", outcome.Result,
			"match_percent", outcome.MatchPercent,
			"best_label_id", bestID,
			"visual", best.Visual != nil,
		)

		s = s.Set(KeyOutcome, outcome)
		return s, nil
	})
}

// resolveBest prefers the refinement result and falls back to the textual
// winner when the visual stage was skipped.
func resolveBest(s state.State) (BestMatch, error) {
	if val, ok := s.Get(KeyBest); ok {
		best, ok := val.(BestMatch)
		if !ok {
			return BestMatch{}, fmt.Errorf("%s is not BestMatch", KeyBest)
		}
		return best, nil
	}

	val, ok := s.Get(KeyFallback)
	if !ok {
		return BestMatch{}, fmt.Errorf("missing %s in state", KeyFallback)
	}

	fallback, ok := val.(TextualMatch)
	if !ok {
		return BestMatch{}, fmt.Errorf("%s is not TextualMatch", KeyFallback)
	}

	return BestMatch{Textual: fallback, Combined: fallback.Score}, nil
}

func extractReport(s state.State) (*scoring.ConformityReport, error) {
	val, ok := s.Get(KeyReport)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyReport)
	}

	report, ok := val.(*scoring.ConformityReport)
	if !ok {
		return nil, fmt.Errorf("%s is not *scoring.ConformityReport", KeyReport)
	}

	return report, nil
}
