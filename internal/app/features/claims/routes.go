// internal/app/features/claims/routes.go
package claims

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/verity/internal/app/system/fireauth"
)

// Routes mounts the participant dashboard (mounted under
// /api/participant from bootstrap). The claim endpoint itself lives in
// the session feature's /interview subtree and is wired there with
// h.ServeClaim.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.With(fireauth.RequireInterviewee).Get("/dashboard", h.ServeDashboard)
	return r
}
