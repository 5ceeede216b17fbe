// internal/app/features/studies/routes.go
package studies

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/verity/internal/app/features/interviews"
	"github.com/dalemusser/verity/internal/app/system/fireauth"
)

// Routes mounts study management under /api/orgs/{org_id}/studies,
// including the per-study interview surface (the interviews feature
// supplies those handlers; they live under this subtree). Membership
// and the org_id match are re-verified per handler from the org_users
// collection; the middleware only establishes the tenant.
func Routes(h *Handler, iv *interviews.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(fireauth.RequireOrganization)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Get("/{study_id}", h.ServeGet)
	r.Patch("/{study_id}", h.HandleUpdate)
	r.Delete("/{study_id}", h.HandleDelete)
	r.Put("/{study_id}/guide", h.HandlePutGuide)
	r.Get("/{study_id}/guide", h.ServeGetGuide)

	r.Post("/{study_id}/interviews", iv.HandleGenerate)
	r.Get("/{study_id}/interviews", iv.ServeList)

	return r
}
