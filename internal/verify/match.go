package verify

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/vmaretto/sigillo/internal/labels"
)

// matchNode returns a state node that compares the extracted text against
// every active reference label concurrently. Per-candidate failures are
// logged and excluded rather than failing the batch; an empty result set
// fails the pipeline. Successful matches are ranked and the top candidates
// carried forward for visual refinement, with the single best retained as
// the textual-only fallback.
func (e *exec) matchNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		if err := e.gov.CheckMatching(); err != nil {
			return s, err
		}

		text, err := extractText(s)
		if err != nil {
			return s, fmt.Errorf("match: %w", err)
		}

		refs, err := e.rt.Labels.Active(ctx)
		if err != nil {
			return s, fmt.Errorf("match: load reference corpus: %w", err)
		}

		e.stream.Progress(
			45, fmt.Sprintf("matching against %d reference labels", len(refs)), nil,
		)

		matches, err := e.matchReferences(ctx, text, refs)
		if err != nil {
			return s, fmt.Errorf("match: %w", err)
		}

		if len(matches) == 0 {
			return s, ErrNoCandidate
		}

		rankMatches(matches)
		top := matches[:min(e.rt.Config.TopK, len(matches))]

		e.rt.Logger.InfoContext(
			ctx, "match node complete",
			"references", len(refs),
			"matches", len(matches),
			"candidates", len(top),
			"best_score", matches[0].Score,
		)

		e.stream.Progress(60, "candidate references selected", nil)

		s = s.Set(KeyMatches, top)
		s = s.Set(KeyFallback, matches[0])
		s = s.Set(KeySkipVisual, e.gov.SkipVisual())

		return s, nil
	})
}

// matchReferences fans out one textual comparison per reference label with
// bounded concurrency. A failing comparison drops that candidate only; the
// returned error is non-nil solely on context cancellation.
func (e *exec) matchReferences(
	ctx context.Context,
	text string,
	refs []labels.Label,
) ([]TextualMatch, error) {
	results := make([]*TextualMatch, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(refs)))

	for i, ref := range refs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			cmp, err := e.rt.Scoring.CompareText(gctx, text, ref.Descriptor())
			if err != nil {
				e.rt.Logger.WarnContext(
					gctx, "textual comparison failed",
					"label_id", ref.ID,
					"label_name", ref.Name,
					"error", err,
				)
				return nil
			}

			results[i] = &TextualMatch{
				Label:       ref,
				Score:       cmp.MatchScore,
				Differences: cmp.Differences,
				Reasoning:   cmp.Reasoning,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]TextualMatch, 0, len(results))
	for _, r := range results {
		if r != nil {
			matches = append(matches, *r)
		}
	}

	return matches, nil
}

// rankMatches sorts descending by score, breaking ties lexicographically by
// label identifier so ranking never depends on corpus iteration order.
func rankMatches(matches []TextualMatch) {
	slices.SortStableFunc(matches, func(a, b TextualMatch) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Label.ID.String(), b.Label.ID.String())
		}
	})
}

func extractText(s state.State) (string, error) {
	val, ok := s.Get(KeyText)
	if !ok {
		return "", fmt.Errorf("missing %s in state", KeyText)
	}

	text, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s is not string", KeyText)
	}

	return text, nil
}
