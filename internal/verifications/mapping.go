package verifications

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/pkg/query"
	"github.com/vmaretto/sigillo/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "verifications", "v").
	Project("id", "ID").
	Project("image_key", "ImageKey").
	Project("extracted_text", "ExtractedText").
	Project("result", "Result").
	Project("match_percent", "MatchPercent").
	Project("violations", "Violations").
	Project("note", "Note").
	Project("best_label_id", "BestLabelID").
	Project("content_id", "ContentID").
	Project("status", "Status").
	Project("verified_at", "VerifiedAt")

var alertProjection = query.
	NewProjectionMap("public", "alerts", "a").
	Project("id", "ID").
	Project("verification_id", "VerificationID").
	Project("category", "Category").
	Project("severity", "Severity").
	Project("title", "Title").
	Project("description", "Description").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "VerifiedAt",
	Descending: true,
}

var alertSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for verification queries.
// Nil fields are ignored.
type Filters struct {
	Result      *string    `json:"result,omitempty"`
	BestLabelID *uuid.UUID `json:"best_label_id,omitempty"`
	ContentID   *uuid.UUID `json:"content_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Result", f.Result).
		WhereEquals("BestLabelID", f.BestLabelID).
		WhereEquals("ContentID", f.ContentID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("result"); v != "" {
		f.Result = &v
	}

	if v := values.Get("best_label_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.BestLabelID = &id
		}
	}

	if v := values.Get("content_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.ContentID = &id
		}
	}

	return f
}

func scanVerification(s repository.Scanner) (Verification, error) {
	var v Verification
	var violationsRaw []byte

	err := s.Scan(
		&v.ID,
		&v.ImageKey,
		&v.ExtractedText,
		&v.Result,
		&v.MatchPercent,
		&violationsRaw,
		&v.Note,
		&v.BestLabelID,
		&v.ContentID,
		&v.Status,
		&v.VerifiedAt,
	)

	if err != nil {
		return v, err
	}

	if len(violationsRaw) > 0 {
		if err := json.Unmarshal(violationsRaw, &v.Violations); err != nil {
			return v, fmt.Errorf("unmarshal violations: %w", err)
		}
	}

	if v.Violations == nil {
		v.Violations = []string{}
	}

	return v, nil
}

func scanAlert(s repository.Scanner) (Alert, error) {
	var a Alert
	err := s.Scan(
		&a.ID,
		&a.VerificationID,
		&a.Category,
		&a.Severity,
		&a.Title,
		&a.Description,
		&a.CreatedAt,
	)
	return a, err
}
