// internal/app/features/session/routes.go
package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/verity/internal/app/system/fireauth"
)

// Routes mounts the engine contract and the participant claim under
// /interview. Fetch and complete carry no middleware: the access token
// in the path is the whole credential. Claim is the one route in this
// subtree needing an authenticated participant; the claims feature
// supplies its handler so the /interview/{token} subtree stays in one
// place.
func Routes(h *Handler, claim http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Get("/{token}", h.ServeFetch)
	r.Post("/{token}/complete", h.ServeComplete)
	r.With(fireauth.RequireInterviewee).Post("/{token}/claim", claim)
	return r
}
