package verifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/pkg/events"
	"github.com/vmaretto/sigillo/pkg/pagination"
)

// System defines the public contract for verification domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Verification], error)

	Find(ctx context.Context, id uuid.UUID) (*Verification, error)
	// Alerts returns the alerts raised for a verification, newest first.
	Alerts(ctx context.Context, verificationID uuid.UUID) ([]Alert, error)
	Verify(ctx context.Context, cmd VerifyCommand, stream *events.Stream) (*Verification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
