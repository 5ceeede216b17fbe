// internal/app/features/session/complete.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/limits"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
	"github.com/dalemusser/verity/internal/app/system/token"
)

// completeRequest is the engine's completion callback payload. The
// engine reports artifact locations only; bytes go to object storage
// through its own upload path.
type completeRequest struct {
	TranscriptURI string `json:"transcript_uri"`
	RecordingURI  string `json:"recording_uri,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// completeResponse acknowledges a completion.
type completeResponse struct {
	InterviewID string    `json:"interview_id"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

// ServeComplete handles POST /interview/{token}/complete.
//
// The transition is idempotent: the engine retries on transport
// failure, and a repeat call with the same artifact URIs acks with the
// stored row. A repeat with different URIs is rejected as a conflict
// rather than silently overwriting the first engine's artifacts.
func (h *Handler) ServeComplete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	accessToken := chi.URLParam(r, "token")
	if !token.Plausible(accessToken) {
		apierr.NotFound(w, "interview not found")
		return
	}

	var req completeRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Validation(w, "invalid JSON body")
		return
	}
	req.TranscriptURI = strings.TrimSpace(req.TranscriptURI)
	req.RecordingURI = strings.TrimSpace(req.RecordingURI)
	if req.TranscriptURI == "" {
		apierr.Validation(w, "transcript_uri is required")
		return
	}

	iv, err := interviewstore.New(h.DB).CompleteByToken(ctx, accessToken, req.TranscriptURI, req.RecordingURI, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, interviewstore.ErrNotFound):
			apierr.NotFound(w, "interview not found")
		case errors.Is(err, interviewstore.ErrArtifactConflict):
			apierr.Conflict(w, "interview already completed with different artifacts")
		default:
			h.Log.Error("completion failed", zap.Error(err))
			apierr.Internal(w)
		}
		return
	}

	h.Log.Info("interview completed",
		zap.String("interview_id", iv.ID.Hex()),
		zap.String("study_id", iv.StudyID.Hex()))

	var completedAt time.Time
	if iv.CompletedAt != nil {
		completedAt = *iv.CompletedAt
	}
	apierr.JSON(w, http.StatusOK, completeResponse{
		InterviewID: iv.ID.Hex(),
		Status:      iv.Status,
		CompletedAt: completedAt,
	})
}
