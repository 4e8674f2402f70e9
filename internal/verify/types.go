package verify

import (
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/internal/labels"
	"github.com/vmaretto/sigillo/internal/scoring"
)

const (
	KeyCandidate  = "candidate_image"
	KeyText       = "extracted_text"
	KeyReport     = "conformity_report"
	KeyMatches    = "textual_matches"
	KeyFallback   = "textual_fallback"
	KeySkipVisual = "skip_visual"
	KeyBest       = "best_match"
	KeyOutcome    = "outcome"
)

// Request is the unit of work entering the pipeline: either raw uploaded
// bytes or an image URL resolved server-side from a monitored content
// record. Exactly one source must be set.
type Request struct {
	Image    []byte
	MimeType string
	ImageURL string
}

// TextualMatch is the per-candidate output of the textual matching stage.
type TextualMatch struct {
	Label       labels.Label `json:"label"`
	Score       float64      `json:"score"`
	Differences []string     `json:"differences"`
	Reasoning   string       `json:"reasoning"`
}

// VisualMatch is the output of comparing the candidate image against one
// reference image.
type VisualMatch struct {
	Similarity  float64         `json:"similarity"`
	Verdict     scoring.Verdict `json:"verdict"`
	Differences []string        `json:"differences"`
	Explanation string          `json:"explanation"`
}

// BestMatch tracks the highest combined score seen across the refinement
// loop. Visual is nil when the pipeline ran in textual-only degraded mode.
type BestMatch struct {
	Textual  TextualMatch `json:"textual"`
	Visual   *VisualMatch `json:"visual,omitempty"`
	Combined float64      `json:"combined"`
}

// Outcome is the final output of a pipeline execution, consumed by the
// persistence layer.
type Outcome struct {
	Image         scoring.Image `json:"-"`
	ExtractedText string        `json:"extracted_text"`
	Result        Result        `json:"result"`
	MatchPercent  int           `json:"match_percent"`
	Violations    []string      `json:"violations"`
	Note          string        `json:"note"`
	BestLabelID   *uuid.UUID    `json:"best_label_id,omitempty"`
	Visual        *VisualMatch  `json:"visual,omitempty"`
	CompletedAt   time.Time     `json:"completed_at"`
}

func workerCount(candidates int) int {
	return max(min(runtime.NumCPU(), candidates), 1)
}
