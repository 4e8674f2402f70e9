package verify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/vmaretto/sigillo/internal/scoring"
)

// refineNode returns a state node that visually compares the candidate
// against the top textual matches, sequentially since visual comparison is
// the most expensive external call. The best combined score seen so far
// wins, updated only on a strictly higher value so the first-ranked
// candidate keeps ties. Per-candidate failures skip that candidate, and the
// loop stops early once the remaining budget runs out.
func (e *exec) refineNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		candidate, err := extractCandidate(s)
		if err != nil {
			return s, fmt.Errorf("refine: %w", err)
		}

		matches, fallback, err := extractMatches(s)
		if err != nil {
			return s, fmt.Errorf("refine: %w", err)
		}

		var best *BestMatch
		compared := 0

		for i, m := range matches {
			if m.Label.ImageKey == "" {
				e.rt.Logger.WarnContext(
					ctx, "visual comparison skipped",
					"label_id", m.Label.ID,
					"reason", "no reference image",
				)
			} else if visual, err := e.compareCandidate(ctx, candidate, m); err != nil {
				e.rt.Logger.WarnContext(
					ctx, "visual comparison skipped",
					"label_id", m.Label.ID,
					"error", err,
				)
			} else {
				compared++
				combined := e.rt.Config.Combine(m.Score, &visual.Similarity)
				if best == nil || combined > best.Combined {
					best = &BestMatch{Textual: m, Visual: visual, Combined: combined}
				}
			}

			e.stream.Progress(
				60+(25*(i+1))/len(matches),
				fmt.Sprintf("visual comparison %d of %d", i+1, len(matches)),
				nil,
			)

			if e.gov.StopVisual() {
				e.rt.Logger.WarnContext(
					ctx, "visual refinement stopped early",
					"elapsed", e.gov.Elapsed(),
					"compared", compared,
				)
				break
			}
		}

		if best == nil {
			best = &BestMatch{Textual: fallback, Combined: fallback.Score}
		}

		e.rt.Logger.InfoContext(
			ctx, "refine node complete",
			"compared", compared,
			"best_combined", best.Combined,
		)

		s = s.Set(KeyBest, *best)
		return s, nil
	})
}

func (e *exec) compareCandidate(
	ctx context.Context,
	candidate scoring.Image,
	m TextualMatch,
) (*VisualMatch, error) {
	data, err := e.rt.Storage.Fetch(ctx, m.Label.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("fetch reference image: %w", err)
	}

	reference := scoring.Image{
		Data:     data,
		MimeType: http.DetectContentType(data),
	}

	cmp, err := e.rt.Scoring.CompareImages(ctx, candidate, reference)
	if err != nil {
		return nil, fmt.Errorf("compare images: %w", err)
	}

	return &VisualMatch{
		Similarity:  cmp.Similarity,
		Verdict:     cmp.Verdict,
		Differences: cmp.Differences,
		Explanation: cmp.Explanation,
	}, nil
}

func extractMatches(s state.State) ([]TextualMatch, TextualMatch, error) {
	val, ok := s.Get(KeyMatches)
	if !ok {
		return nil, TextualMatch{}, fmt.Errorf("missing %s in state", KeyMatches)
	}

	matches, ok := val.([]TextualMatch)
	if !ok {
		return nil, TextualMatch{}, fmt.Errorf("%s is not []TextualMatch", KeyMatches)
	}

	fbVal, ok := s.Get(KeyFallback)
	if !ok {
		return nil, TextualMatch{}, fmt.Errorf("missing %s in state", KeyFallback)
	}

	fallback, ok := fbVal.(TextualMatch)
	if !ok {
		return nil, TextualMatch{}, fmt.Errorf("%s is not TextualMatch", KeyFallback)
	}

	return matches, fallback, nil
}
