package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/campushub/campushub/internal/catalog"
	"github.com/campushub/campushub/internal/clubs"
	"github.com/campushub/campushub/internal/content"
	"github.com/campushub/campushub/internal/forms"
	"github.com/campushub/campushub/internal/identity"
	"github.com/campushub/campushub/internal/roles"
	"github.com/campushub/campushub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Identity        *identity.Middleware
	IdentityHandler *identity.Handler
	RolesHandler    *roles.Handler
	ClubsHandler    *clubs.Handler
	FormsHandler    *forms.Handler
	ContentHandler  *content.Handler
	CatalogHandler  *catalog.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with campushub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Identity: params.Identity,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.IdentityHandler.MountRoutes)
	r.Route("/roles", params.RolesHandler.MountRoutes)
	r.Route("/clubs", params.ClubsHandler.MountRoutes)
	r.Route("/forms", params.FormsHandler.MountFormRoutes)
	r.Route("/applications", params.FormsHandler.MountApplicationRoutes)
	r.Route("/content-requests", params.ContentHandler.MountRoutes)
	r.Route("/catalog", params.CatalogHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
