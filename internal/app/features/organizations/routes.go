// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/verity/internal/app/system/fireauth"
)

// Routes mounts the /api/orgs subtree. The studies and artifacts
// routers are supplied by their features; they hang under /{org_id}
// here so the whole organization trust domain shares one root.
func Routes(h *Handler, studiesRouter, artifactsRouter chi.Router) chi.Router {
	r := chi.NewRouter()

	// Provisioning is platform-staff only.
	r.With(fireauth.RequireSuperAdmin).Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(fireauth.RequireOrganization)
		pr.Get("/current", h.ServeCurrent)
		pr.Get("/current/users", h.ServeUsers)
	})

	r.Route("/{org_id}", func(pr chi.Router) {
		pr.Mount("/studies", studiesRouter)
		pr.Mount("/interviews", artifactsRouter)
	})

	return r
}
