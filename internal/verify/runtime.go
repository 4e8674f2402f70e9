package verify

import (
	"log/slog"

	"github.com/vmaretto/sigillo/internal/labels"
	"github.com/vmaretto/sigillo/internal/safefetch"
	"github.com/vmaretto/sigillo/internal/scoring"
	"github.com/vmaretto/sigillo/pkg/storage"
)

// Runtime bundles the collaborators the pipeline nodes require.
// It is constructed by higher-level composition code from Infrastructure
// and Domain systems.
type Runtime struct {
	Scoring scoring.Client
	Labels  labels.System
	Storage storage.System
	Fetcher *safefetch.Fetcher
	Config  *Config
	Logger  *slog.Logger
}
