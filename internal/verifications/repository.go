package verifications

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/internal/contents"
	"github.com/vmaretto/sigillo/internal/labels"
	"github.com/vmaretto/sigillo/internal/safefetch"
	"github.com/vmaretto/sigillo/internal/scoring"
	"github.com/vmaretto/sigillo/internal/verify"
	"github.com/vmaretto/sigillo/pkg/events"
	"github.com/vmaretto/sigillo/pkg/pagination"
	"github.com/vmaretto/sigillo/pkg/query"
	"github.com/vmaretto/sigillo/pkg/repository"
	"github.com/vmaretto/sigillo/pkg/storage"
)

type repo struct {
	db         *sql.DB
	rt         *verify.Runtime
	contents   contents.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a verification repository implementing the System interface.
// It internally constructs the pipeline runtime from the provided
// dependencies.
func New(
	db *sql.DB,
	cfg *verify.Config,
	client scoring.Client,
	fetcher *safefetch.Fetcher,
	logger *slog.Logger,
	pagination pagination.Config,
	store storage.System,
	labels labels.System,
	contents contents.System,
) System {
	rt := &verify.Runtime{
		Scoring: client,
		Labels:  labels,
		Storage: store,
		Fetcher: fetcher,
		Config:  cfg,
		Logger:  logger.With("pipeline", "verify"),
	}
	return &repo{
		db:         db,
		rt:         rt,
		contents:   contents,
		logger:     logger.With("system", "verifications"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.rt.Config.MaxImageSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Verification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ExtractedText", "Note")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count verifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanVerification)
	if err != nil {
		return nil, fmt.Errorf("query verifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Verification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVerification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &v, nil
}

func (r *repo) Alerts(ctx context.Context, verificationID uuid.UUID) ([]Alert, error) {
	q, args := query.
		NewBuilder(alertProjection, alertSort).
		WhereEquals("VerificationID", &verificationID).
		Build()

	alerts, err := repository.QueryMany(ctx, r.db, q, args, scanAlert)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	return alerts, nil
}

// Verify runs the pipeline for one request, persists the outcome, and
// raises an alert when the verdict is suspect or non-conforming. Progress
// events are pushed onto stream; the caller owns the terminal event.
func (r *repo) Verify(
	ctx context.Context,
	cmd VerifyCommand,
	stream *events.Stream,
) (*Verification, error) {
	req, err := r.resolveSource(ctx, cmd)
	if err != nil {
		return nil, err
	}

	outcome, err := verify.Execute(ctx, r.rt, req, stream)
	if err != nil {
		return nil, err
	}

	stream.Progress(95, "saving verification", nil)

	v, err := r.persist(ctx, cmd, outcome)
	if err != nil {
		return nil, err
	}

	if v.Result != verify.ResultConforme {
		if err := r.createAlert(ctx, v); err != nil {
			r.logger.Error("alert creation failed",
				"verification_id", v.ID,
				"error", err,
			)
		}
	}

	r.logger.Info("verification completed",
		"id", v.ID,
		"result", v.Result,
		"match_percent", v.MatchPercent,
	)
	return v, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	if _, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(
			ctx, tx, "DELETE FROM verifications WHERE id = $1", id,
		)
		return struct{}{}, err
	}); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.rt.Storage.Delete(ctx, v.ImageKey); err != nil {
		r.logger.Warn("verification image delete failed",
			"key", v.ImageKey,
			"error", err,
		)
	}

	r.logger.Info("verification deleted", "id", id)
	return nil
}

// resolveSource turns the command into a pipeline request. Content
// references resolve to the stored image URL server-side; client-supplied
// URLs are never accepted.
func (r *repo) resolveSource(
	ctx context.Context,
	cmd VerifyCommand,
) (verify.Request, error) {
	if cmd.ContentID != nil {
		c, err := r.contents.Find(ctx, *cmd.ContentID)
		if err != nil {
			return verify.Request{}, fmt.Errorf(
				"%w: monitored content %s: %s", verify.ErrInvalidInput, cmd.ContentID, err,
			)
		}

		if c.ImageURL == "" {
			return verify.Request{}, fmt.Errorf(
				"%w: monitored content %s has no image", verify.ErrInvalidInput, c.ID,
			)
		}

		return verify.Request{ImageURL: c.ImageURL}, nil
	}

	if len(cmd.Image) > 0 {
		return verify.Request{Image: cmd.Image, MimeType: cmd.MimeType}, nil
	}

	return verify.Request{}, verify.ErrInvalidInput
}

// persist uploads the candidate image and writes the verification record.
// The uploaded blob is removed again when the record write fails, since an
// unpersisted result is not actionable.
func (r *repo) persist(
	ctx context.Context,
	cmd VerifyCommand,
	outcome *verify.Outcome,
) (*Verification, error) {
	id := uuid.New()
	key := buildImageKey(id, outcome.Image.MimeType)

	if err := r.rt.Storage.Upload(
		ctx, key, bytes.NewReader(outcome.Image.Data), outcome.Image.MimeType,
	); err != nil {
		return nil, fmt.Errorf("%w: upload candidate image: %s", ErrPersist, err)
	}

	violationsJSON, err := json.Marshal(outcome.Violations)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal violations: %s", ErrPersist, err)
	}

	insertQ := `
		INSERT INTO verifications(
			id, image_key, extracted_text, result, match_percent,
			violations, note, best_label_id, content_id, status, verified_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, image_key, extracted_text, result, match_percent,
				  violations, note, best_label_id, content_id, status, verified_at`

	insertArgs := []any{
		id,
		key,
		outcome.ExtractedText,
		string(outcome.Result),
		outcome.MatchPercent,
		violationsJSON,
		outcome.Note,
		outcome.BestLabelID,
		cmd.ContentID,
		StatusCompleted,
		outcome.CompletedAt,
	}

	v, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Verification, error) {
		return repository.QueryOne(ctx, tx, insertQ, insertArgs, scanVerification)
	})

	if err != nil {
		if delErr := r.rt.Storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("candidate image cleanup failed",
				"key", key,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("%w: %s", ErrPersist, err)
	}

	return &v, nil
}

func (r *repo) createAlert(ctx context.Context, v *Verification) error {
	severity := SeverityMedium
	if v.Result == verify.ResultNonConforme {
		severity = SeverityCritical
	}

	insertQ := `
		INSERT INTO alerts(verification_id, category, severity, title, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, verification_id, category, severity, title, description, created_at`

	insertArgs := []any{
		v.ID,
		alertCategory,
		string(severity),
		fmt.Sprintf("Etichetta %s", v.Result),
		alertDescription(v, r.rt.Config.AlertPreview),
	}

	a, err := repository.QueryOne(ctx, r.db, insertQ, insertArgs, scanAlert)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	r.logger.Info("alert raised",
		"id", a.ID,
		"verification_id", v.ID,
		"severity", a.Severity,
	)
	return nil
}

// alertDescription summarizes the score and the first few violations.
func alertDescription(v *Verification, preview int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Punteggio di corrispondenza %d%%.", v.MatchPercent)

	if len(v.Violations) > 0 {
		shown := v.Violations[:min(preview, len(v.Violations))]
		fmt.Fprintf(&b, " Violazioni: %s.", strings.Join(shown, "; "))

		if rest := len(v.Violations) - len(shown); rest > 0 {
			fmt.Fprintf(&b, " Altre %d violazioni omesse.", rest)
		}
	}

	return b.String()
}

func buildImageKey(id uuid.UUID, mimeType string) string {
	ext := "jpg"
	switch mimeType {
	case "image/png":
		ext = "png"
	case "image/webp":
		ext = "webp"
	}
	return fmt.Sprintf("verifications/%s/candidate.%s", id, ext)
}
