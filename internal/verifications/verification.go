// Package verifications implements the verification domain: running the
// pipeline for a submitted label image, persisting the outcome, raising
// alerts for suspect or non-conforming verdicts, and streaming progress to
// the caller.
package verifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/internal/verify"
)

// Status values for the verification processing-state tag. Records are
// written once with StatusCompleted; downstream review transitions happen
// outside this domain.
const (
	StatusCompleted = "completed"
)

// Verification is the persisted outcome of one pipeline execution.
type Verification struct {
	ID            uuid.UUID     `json:"id"`
	ImageKey      string        `json:"image_key"`
	ExtractedText string        `json:"extracted_text"`
	Result        verify.Result `json:"result"`
	MatchPercent  int           `json:"match_percent"`
	Violations    []string      `json:"violations"`
	Note          string        `json:"note"`
	BestLabelID   *uuid.UUID    `json:"best_label_id"`
	ContentID     *uuid.UUID    `json:"content_id"`
	Status        string        `json:"status"`
	VerifiedAt    time.Time     `json:"verified_at"`
}

// Severity levels for alerts raised on non-conforming verdicts.
type Severity string

// Alert severities. Non-conforming verdicts are critical, suspect verdicts
// medium; conforming verdicts never raise an alert.
const (
	SeverityCritical Severity = "critico"
	SeverityMedium   Severity = "medio"
)

const alertCategory = "verifica_etichetta"

// Alert is the side effect recorded for a suspect or non-conforming
// verification.
type Alert struct {
	ID             uuid.UUID `json:"id"`
	VerificationID uuid.UUID `json:"verification_id"`
	Category       string    `json:"category"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// VerifyCommand carries one verification request: either uploaded image
// bytes or a reference to monitored content whose image URL is resolved
// server-side.
type VerifyCommand struct {
	Image     []byte     `json:"-"`
	MimeType  string     `json:"-"`
	ContentID *uuid.UUID `json:"content_id,omitempty"`
}
