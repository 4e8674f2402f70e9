package api

import (
	"net/http"

	"github.com/vmaretto/sigillo/internal/config"
	"github.com/vmaretto/sigillo/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Labels.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Contents.Handler().Routes(),
		domain.Verifications.Handler().Routes(),
	)
}
