// internal/app/features/studies/guide.go
package studies

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	guidestore "github.com/dalemusser/verity/internal/app/store/guides"
	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/htmlsanitize"
	"github.com/dalemusser/verity/internal/app/system/limits"
	"github.com/dalemusser/verity/internal/app/system/membership"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
)

type putGuideRequest struct {
	ContentMD string `json:"content_md"`
}

// HandlePutGuide handles PUT /api/orgs/{org_id}/studies/{study_id}/guide.
// A study becomes startable once its guide exists; re-PUT replaces it.
func (h *Handler) HandlePutGuide(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	member, ok := membership.Require(ctx, w, r, h.DB)
	if !ok {
		return
	}
	studyID, ok := studyIDParam(w, r)
	if !ok {
		return
	}

	var req putGuideRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxGuideContentSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Validation(w, "invalid JSON body")
		return
	}
	// Guide content is echoed verbatim to unauthenticated token bearers
	// via the handoff endpoint, so embedded HTML is stripped here, once,
	// before it is ever stored.
	content := strings.TrimSpace(htmlsanitize.Sanitize(req.ContentMD))
	if content == "" {
		apierr.Validation(w, "content_md is required")
		return
	}

	// Ownership before write: the guide upsert itself is not org-scoped.
	if _, err := studystore.New(h.DB).GetForOrganization(ctx, studyID, member.OrganizationID); err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "study not found")
			return
		}
		h.Log.Error("guide put: study lookup failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	guide, err := guidestore.New(h.DB).Upsert(ctx, studyID, content)
	if err != nil {
		h.Log.Error("guide upsert failed", zap.String("study_id", studyID.Hex()), zap.Error(err))
		apierr.Internal(w)
		return
	}
	apierr.JSON(w, http.StatusOK, guide)
}

// ServeGetGuide handles GET /api/orgs/{org_id}/studies/{study_id}/guide.
func (h *Handler) ServeGetGuide(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, ok := membership.Require(ctx, w, r, h.DB)
	if !ok {
		return
	}
	studyID, ok := studyIDParam(w, r)
	if !ok {
		return
	}

	if _, err := studystore.New(h.DB).GetForOrganization(ctx, studyID, member.OrganizationID); err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "study not found")
			return
		}
		h.Log.Error("guide get: study lookup failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	guide, err := guidestore.New(h.DB).GetByStudyID(ctx, studyID)
	if err != nil {
		if errors.Is(err, guidestore.ErrNotFound) {
			apierr.NotFound(w, "guide not found")
			return
		}
		h.Log.Error("guide get failed", zap.Error(err))
		apierr.Internal(w)
		return
	}
	apierr.JSON(w, http.StatusOK, guide)
}
