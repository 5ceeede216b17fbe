// internal/app/features/interviews/routes.go
package interviews

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/verity/internal/app/system/fireauth"
)

// ArtifactRoutes mounts the artifact proxy (mounted under
// /api/orgs/{org_id}/interviews from bootstrap). HandleGenerate and
// ServeList are registered by the studies feature, whose subtree owns
// the /studies/{study_id}/interviews paths.
func ArtifactRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(fireauth.RequireOrganization)
	r.Get("/{id}/artifacts/{filename}", h.ServeArtifact)
	return r
}
