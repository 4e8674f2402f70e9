package api

import (
	"github.com/vmaretto/sigillo/internal/contents"
	"github.com/vmaretto/sigillo/internal/labels"
	"github.com/vmaretto/sigillo/internal/safefetch"
	"github.com/vmaretto/sigillo/internal/scoring"
	"github.com/vmaretto/sigillo/internal/verifications"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Labels        labels.System
	Contents      contents.System
	Verifications verifications.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	labelsSystem := labels.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	contentsSystem := contents.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	client := scoring.NewAgentClient(runtime.Agent, runtime.Logger)
	fetcher := safefetch.New(runtime.Pipeline.MaxImageSize)

	verificationsSystem := verifications.New(
		runtime.Database.Connection(),
		runtime.Pipeline,
		client,
		fetcher,
		runtime.Logger,
		runtime.Pagination,
		runtime.Storage,
		labelsSystem,
		contentsSystem,
	)

	return &Domain{
		Labels:        labelsSystem,
		Contents:      contentsSystem,
		Verifications: verificationsSystem,
	}
}
