package labels

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/pkg/pagination"
	"github.com/vmaretto/sigillo/pkg/query"
	"github.com/vmaretto/sigillo/pkg/repository"
	"github.com/vmaretto/sigillo/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a reference label repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "labels"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Label], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Producer", "Region", "Municipality")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count labels: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanLabel)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Label, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	l, err := repository.QueryOne(ctx, r.db, q, args, scanLabel)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &l, nil
}

func (r *repo) Active(ctx context.Context) ([]Label, error) {
	active := true
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("Active", &active).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanLabel)
	if err != nil {
		return nil, fmt.Errorf("query active labels: %w", err)
	}
	return items, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Label, error) {
	if cmd.Name == "" || cmd.Producer == "" || len(cmd.Image) == 0 {
		return nil, ErrInvalidLabel
	}

	id := uuid.New()
	imageKey := buildImageKey(id, "front", cmd.ImageType)

	if err := r.storage.Upload(ctx, imageKey, bytes.NewReader(cmd.Image), cmd.ImageType); err != nil {
		return nil, fmt.Errorf("upload label image: %w", err)
	}

	var backKey *string
	if len(cmd.BackImage) > 0 {
		key := buildImageKey(id, "back", cmd.BackType)
		if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.BackImage), cmd.BackType); err != nil {
			return nil, fmt.Errorf("upload back image: %w", err)
		}
		backKey = &key
	}

	q := `
		INSERT INTO reference_labels(id, name, producer, designation, region, municipality, label_type, image_key, back_image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, name, producer, designation, region, municipality, label_type, image_key, back_image_key, active, created_at, updated_at`

	insertArgs := []any{
		id,
		cmd.Name,
		cmd.Producer,
		cmd.Designation,
		cmd.Region,
		cmd.Municipality,
		cmd.LabelType,
		imageKey,
		backKey,
	}

	l, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Label, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanLabel)
	})

	if err != nil {
		r.cleanupImages(ctx, imageKey, backKey)
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("reference label created", "id", l.ID, "name", l.Name)
	return &l, nil
}

func (r *repo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Label, error) {
	q := `
		UPDATE reference_labels
		SET active = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, producer, designation, region, municipality, label_type, image_key, back_image_key, active, created_at, updated_at`

	l, err := repository.QueryOne(ctx, r.db, q, []any{id, active}, scanLabel)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("reference label updated", "id", l.ID, "active", l.Active)
	return &l, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	l, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM reference_labels WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cleanupImages(ctx, l.ImageKey, l.BackImageKey)

	r.logger.Info("reference label deleted", "id", id)
	return nil
}

func (r *repo) cleanupImages(ctx context.Context, imageKey string, backKey *string) {
	if err := r.storage.Delete(ctx, imageKey); err != nil {
		r.logger.Warn("label image delete failed", "key", imageKey, "error", err)
	}
	if backKey != nil {
		if err := r.storage.Delete(ctx, *backKey); err != nil {
			r.logger.Warn("back image delete failed", "key", *backKey, "error", err)
		}
	}
}

func buildImageKey(id uuid.UUID, side, contentType string) string {
	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return path.Join("references", id.String(), side+ext)
}
