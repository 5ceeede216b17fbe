// internal/app/features/session/handoff.go
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	guidestore "github.com/dalemusser/verity/internal/app/store/guides"
	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
	"github.com/dalemusser/verity/internal/app/system/token"
	"github.com/dalemusser/verity/internal/domain/models"
)

// handoffResponse is everything the engine needs to run a session.
type handoffResponse struct {
	Interview handoffInterview `json:"interview"`
	Study     handoffStudy     `json:"study"`
	Guide     handoffGuide     `json:"guide"`
}

type handoffInterview struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	PlatformSource string    `json:"platform_source,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type handoffStudy struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type handoffGuide struct {
	ContentMD string `json:"content_md"`
}

// ServeFetch handles GET /interview/{token}: the engine's only read
// path. A completed or expired token is dead; the status check here is
// what makes tokens single-use after the first completion.
func (h *Handler) ServeFetch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	accessToken := chi.URLParam(r, "token")
	// Junk that is not even token-shaped reads as not-found without a
	// database round trip, indistinguishable from an unknown token.
	if !token.Plausible(accessToken) {
		apierr.NotFound(w, "interview not found")
		return
	}

	iv, err := interviewstore.New(h.DB).GetByToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, interviewstore.ErrNotFound) {
			apierr.NotFound(w, "interview not found")
			return
		}
		h.Log.Error("handoff: interview lookup failed", zap.Error(err))
		apierr.Internal(w)
		return
	}
	if iv.Status == models.InterviewCompleted {
		apierr.AlreadyCompleted(w, "interview already completed")
		return
	}
	if iv.Expired(time.Now().UTC()) {
		apierr.Expired(w, "interview link expired")
		return
	}

	study, err := studystore.New(h.DB).GetByID(ctx, iv.StudyID)
	if err != nil {
		h.Log.Error("handoff: study lookup failed",
			zap.String("interview_id", iv.ID.Hex()), zap.Error(err))
		apierr.Internal(w)
		return
	}

	guide, err := guidestore.New(h.DB).GetByStudyID(ctx, study.ID)
	if err != nil {
		// A started interview should always have a guide behind it; if it
		// vanished the session cannot run.
		if errors.Is(err, guidestore.ErrNotFound) {
			apierr.NotFound(w, "interview not found")
			return
		}
		h.Log.Error("handoff: guide lookup failed",
			zap.String("interview_id", iv.ID.Hex()), zap.Error(err))
		apierr.Internal(w)
		return
	}

	apierr.JSON(w, http.StatusOK, handoffResponse{
		Interview: handoffInterview{
			ID:             iv.ID.Hex(),
			Status:         iv.Status,
			PlatformSource: iv.PlatformSource,
			ExpiresAt:      iv.ExpiresAt,
		},
		Study: handoffStudy{
			ID:          study.ID.Hex(),
			Title:       study.Title,
			Description: study.Description,
		},
		Guide: handoffGuide{ContentMD: guide.ContentMD},
	})
}
