// internal/app/features/links/resolve.go
package links

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	guidestore "github.com/dalemusser/verity/internal/app/store/guides"
	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/engine"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
)

// ServeStart handles GET /study/{slug}/start?pid=<external participant id>.
//
// It resolves the slug to a study, requires the study to carry a guide
// (the engine cannot run without one), finds or creates the interview
// for the (study, pid) pair, and 302-redirects the participant to the
// engine entry point with the access token and this service's callback
// base URL. A pair that already completed its interview gets a plain
// terminal page instead of another redirect; tokens are single-use.
func (h *Handler) ServeStart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	slug := chi.URLParam(r, "slug")
	pid := strings.TrimSpace(r.URL.Query().Get("pid"))

	study, err := studystore.New(h.DB).GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "study not found")
			return
		}
		h.Log.Error("resolve: study lookup failed", zap.String("slug", slug), zap.Error(err))
		apierr.Internal(w)
		return
	}

	hasGuide, err := guidestore.New(h.DB).ExistsForStudy(ctx, study.ID)
	if err != nil {
		h.Log.Error("resolve: guide lookup failed", zap.String("slug", slug), zap.Error(err))
		apierr.Internal(w)
		return
	}
	if !hasGuide {
		// A study without a guide is not startable; to the participant it
		// does not exist.
		apierr.NotFound(w, "study not found")
		return
	}

	iv, isNew, err := interviewstore.New(h.DB).FindOrCreate(ctx, study.ID, pid, h.TokenTTL)
	if err != nil {
		if errors.Is(err, interviewstore.ErrAlreadyCompleted) {
			renderTerminalPage(w, study.Title)
			return
		}
		h.Log.Error("resolve: find-or-create failed", zap.String("slug", slug), zap.Error(err))
		apierr.Internal(w)
		return
	}

	h.Log.Info("interview link resolved",
		zap.String("slug", slug),
		zap.String("interview_id", iv.ID.Hex()),
		zap.Bool("is_new", isNew),
		zap.String("platform_source", iv.PlatformSource))

	http.Redirect(w, r, engine.EntryURL(h.EngineBaseURL, iv.AccessToken, h.CallbackBaseURL), http.StatusFound)
}
