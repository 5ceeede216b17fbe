// internal/app/features/links/routes.go
package links

import "github.com/go-chi/chi/v5"

// Routes mounts the public link-resolution routes (mounted under /study
// from bootstrap). No auth middleware: the slug is public and the issued
// token is the participant's only credential.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{slug}/start", h.ServeStart)
	return r
}
