// internal/app/features/claims/dashboard.go
package claims

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	participantstore "github.com/dalemusser/verity/internal/app/store/participants"
	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/fireauth"
	"github.com/dalemusser/verity/internal/app/system/platform"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
)

// dashboardResponse aggregates the caller's claimed interviews across
// every study and organization. Platform identifiers come back masked
// and artifact locations are omitted entirely: the dashboard proves
// participation, it does not leak research data.
type dashboardResponse struct {
	Interviews []dashboardInterview `json:"interviews"`
}

type dashboardInterview struct {
	ID             string     `json:"id"`
	StudyTitle     string     `json:"study_title"`
	PlatformSource string     `json:"platform_source,omitempty"`
	ParticipantID  string     `json:"participant_id,omitempty"` // masked
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
}

// ServeDashboard handles GET /api/participant/dashboard.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ident, ok := fireauth.Identity(r)
	if !ok {
		apierr.Unauthorized(w, "authentication required")
		return
	}

	profile, err := participantstore.New(h.DB).GetByFirebaseUID(ctx, ident.UID)
	if err != nil {
		if errors.Is(err, participantstore.ErrNotFound) {
			// Signed in but never claimed anything.
			apierr.JSON(w, http.StatusOK, dashboardResponse{Interviews: []dashboardInterview{}})
			return
		}
		h.Log.Error("dashboard: profile lookup failed", zap.String("uid", ident.UID), zap.Error(err))
		apierr.Internal(w)
		return
	}

	ivs, err := interviewstore.New(h.DB).ListByVerityUser(ctx, profile.ID)
	if err != nil {
		h.Log.Error("dashboard: interview list failed", zap.String("uid", ident.UID), zap.Error(err))
		apierr.Internal(w)
		return
	}

	studies := studystore.New(h.DB)
	titles := make(map[primitive.ObjectID]string, len(ivs))

	out := make([]dashboardInterview, 0, len(ivs))
	for _, iv := range ivs {
		title, seen := titles[iv.StudyID]
		if !seen {
			study, err := studies.GetByID(ctx, iv.StudyID)
			if err == nil {
				title = study.Title
			}
			titles[iv.StudyID] = title
		}

		entry := dashboardInterview{
			ID:             iv.ID.Hex(),
			StudyTitle:     title,
			PlatformSource: iv.PlatformSource,
			CompletedAt:    iv.CompletedAt,
			ClaimedAt:      iv.ClaimedAt,
		}
		if iv.ExternalParticipantID != nil {
			entry.ParticipantID = platform.Mask(*iv.ExternalParticipantID)
		}
		out = append(out, entry)
	}

	apierr.JSON(w, http.StatusOK, dashboardResponse{Interviews: out})
}
