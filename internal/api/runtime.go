package api

import (
	"github.com/vmaretto/sigillo/internal/config"
	"github.com/vmaretto/sigillo/internal/infrastructure"
	"github.com/vmaretto/sigillo/internal/verify"
	"github.com/vmaretto/sigillo/pkg/pagination"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent      gaconfig.AgentConfig
	Pipeline   *verify.Config
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Agent:      cfg.Agent,
		Pipeline:   &cfg.Pipeline,
		Pagination: cfg.API.Pagination,
	}
}
