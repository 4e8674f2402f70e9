// Package scoring defines the external analysis services the verification
// pipeline depends on: text extraction, regulatory conformity analysis,
// textual comparison against reference labels, and visual comparison of
// label images. Each service is an opaque collaborator returning structured
// scores; the production implementation backs them with a vision-capable
// model agent.
package scoring

import "context"

// ConformityReport is the outcome of checking extracted label text against
// designation regulations.
type ConformityReport struct {
	Result       string   `json:"result"`
	MatchPercent float64  `json:"match_percent"`
	Violations   []string `json:"violations"`
	Note         string   `json:"note"`
}

// TextualComparison scores how closely extracted text matches one reference
// label's structured fields.
type TextualComparison struct {
	MatchScore  float64  `json:"match_score"`
	Differences []string `json:"differences"`
	Reasoning   string   `json:"reasoning"`
}

// VisualComparison is the outcome of comparing a candidate image against a
// reference label image.
type VisualComparison struct {
	Similarity  float64  `json:"similarity"`
	Verdict     Verdict  `json:"verdict"`
	Differences []string `json:"differences"`
	Explanation string   `json:"explanation"`
}

// ReferenceDescriptor carries the structured fields of one reference label
// for textual comparison.
type ReferenceDescriptor struct {
	Name         string `json:"name"`
	Producer     string `json:"producer"`
	Designation  string `json:"designation"`
	Region       string `json:"region"`
	Municipality string `json:"municipality"`
	LabelType    string `json:"label_type"`
}

// TextExtractor reads all visible text off a label image.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// ConformityAnalyzer checks extracted text against designation regulations.
type ConformityAnalyzer interface {
	AnalyzeConformity(ctx context.Context, text string) (*ConformityReport, error)
}

// TextualComparer scores extracted text against a reference descriptor.
type TextualComparer interface {
	CompareText(ctx context.Context, text string, ref ReferenceDescriptor) (*TextualComparison, error)
}

// VisualComparer scores a candidate label image against a reference image.
type VisualComparer interface {
	CompareImages(ctx context.Context, candidate, reference Image) (*VisualComparison, error)
}

// Image pairs raw image bytes with their MIME type.
type Image struct {
	Data     []byte
	MimeType string
}

// Client bundles all four scoring collaborators.
type Client interface {
	TextExtractor
	ConformityAnalyzer
	TextualComparer
	VisualComparer
}
