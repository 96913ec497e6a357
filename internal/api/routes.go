package api

import (
	"net/http"

	"github.com/JaimeStill/provenance/internal/config"
	"github.com/JaimeStill/provenance/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	archive := newArchiveHandler(
		runtime.Storage,
		runtime.Logger,
		cfg.API.Pagination.MaxPageSize,
	)

	routes.Register(
		mux,
		domain.Batches.Handler().Routes(),
		domain.Verification.Handler().Routes(),
		archive.routes(),
	)
}
