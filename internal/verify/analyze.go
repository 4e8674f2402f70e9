package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/vmaretto/sigillo/internal/scoring"
)

// analyzeNode returns a state node that extracts the label text from the
// candidate image and checks it against designation regulations. Checkpoint
// one runs before extraction: past it the remaining stages cannot plausibly
// finish, so the request aborts.
func (e *exec) analyzeNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		if err := e.gov.CheckExtraction(); err != nil {
			return s, err
		}

		candidate, err := extractCandidate(s)
		if err != nil {
			return s, fmt.Errorf("analyze: %w", err)
		}

		e.stream.Progress(15, "extracting label text", nil)

		text, err := e.rt.Scoring.ExtractText(ctx, candidate.Data, candidate.MimeType)
		if err != nil {
			return s, fmt.Errorf("analyze: extract text: %w", err)
		}

		if strings.TrimSpace(text) == "" {
			return s, fmt.Errorf("analyze: %w", scoring.ErrEmptyResponse)
		}

		e.stream.Progress(30, "analyzing regulatory conformity", nil)

		report, err := e.rt.Scoring.AnalyzeConformity(ctx, text)
		if err != nil {
			return s, fmt.Errorf("analyze: conformity: %w", err)
		}

		e.rt.Logger.InfoContext(
			ctx, "analyze node complete",
			"text_length", len(text),
			"conformity_result", report.Result,
			"violations", len(report.Violations),
		)

		s = s.Set(KeyText, text)
		s = s.Set(KeyReport, report)

		return s, nil
	})
}

func extractCandidate(s state.State) (scoring.Image, error) {
	val, ok := s.Get(KeyCandidate)
	if !ok {
		return scoring.Image{}, fmt.Errorf("missing %s in state", KeyCandidate)
	}

	img, ok := val.(scoring.Image)
	if !ok {
		return scoring.Image{}, fmt.Errorf("%s is not scoring.Image", KeyCandidate)
	}

	return img, nil
}
