package contents

import (
	"context"

	"github.com/google/uuid"

	"github.com/vmaretto/sigillo/pkg/pagination"
)

// System defines the public contract for monitored content operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[MonitoredContent], error)

	Find(ctx context.Context, id uuid.UUID) (*MonitoredContent, error)
}
