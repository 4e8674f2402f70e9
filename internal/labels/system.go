package labels

import (
	"context"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/pkg/pagination"
)

// System defines the public contract for reference label operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Label], error)

	Find(ctx context.Context, id uuid.UUID) (*Label, error)
	// Active returns every label participating in verification matching.
	Active(ctx context.Context) ([]Label, error)
	Create(ctx context.Context, cmd CreateCommand) (*Label, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Label, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
