// Package contents manages monitored web content records whose images can be
// submitted for label verification by reference.
package contents

import (
	"time"

	"github.com/google/uuid"
)

// MonitoredContent is a web listing or post under observation. Its ImageURL
// points at the label image to verify; the server fetches it rather than
// trusting client-supplied bytes.
type MonitoredContent struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
