package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atlas-fam/atlas-fam/internal/assets"
	"github.com/atlas-fam/atlas-fam/internal/grn"
	"github.com/atlas-fam/atlas-fam/internal/intake"
	"github.com/atlas-fam/atlas-fam/internal/masterdata"
	"github.com/atlas-fam/atlas-fam/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	GRNHandler        *grn.Handler
	IntakeHandler     *intake.Handler
	AssetsHandler     *assets.Handler
	MasterDataHandler *masterdata.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/grn", func(r chi.Router) {
		if params.IntakeHandler != nil {
			params.IntakeHandler.MountRoutes(r)
		}
		if params.GRNHandler != nil {
			params.GRNHandler.MountRoutes(r)
		}
	})

	if params.AssetsHandler != nil {
		r.Route("/assets", params.AssetsHandler.MountRoutes)
	}
	if params.MasterDataHandler != nil {
		r.Route("/masterdata", params.MasterDataHandler.MountRoutes)
	}

	return r
}
