// internal/app/features/interviews/list.go
package interviews

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/membership"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
)

// listEntry is an interview as researchers see it: lifecycle state plus
// artifact-availability flags, never the access token.
type listEntry struct {
	ID                    string     `json:"id"`
	ExternalParticipantID string     `json:"external_participant_id,omitempty"`
	PlatformSource        string     `json:"platform_source,omitempty"`
	Status                string     `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	Claimed               bool       `json:"claimed"`
	HasTranscript         bool       `json:"has_transcript"`
	HasRecording          bool       `json:"has_recording"`
}

// ServeList handles GET /api/orgs/{org_id}/studies/{study_id}/interviews.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
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

	if _, err := studystore.New(h.DB).GetForOrganization(ctx, studyID, member.OrganizationID); err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "study not found")
			return
		}
		h.Log.Error("interview list: study lookup failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	ivs, err := interviewstore.New(h.DB).ListByStudy(ctx, studyID)
	if err != nil {
		h.Log.Error("interview list failed", zap.String("study_id", studyID.Hex()), zap.Error(err))
		apierr.Internal(w)
		return
	}

	out := make([]listEntry, 0, len(ivs))
	for _, iv := range ivs {
		entry := listEntry{
			ID:             iv.ID.Hex(),
			PlatformSource: iv.PlatformSource,
			Status:         iv.Status,
			CreatedAt:      iv.CreatedAt,
			CompletedAt:    iv.CompletedAt,
			Claimed:        iv.VerityUserID != nil,
			HasTranscript:  iv.TranscriptURI != "",
			HasRecording:   iv.RecordingURI != "",
		}
		if iv.ExternalParticipantID != nil {
			entry.ExternalParticipantID = *iv.ExternalParticipantID
		}
		out = append(out, entry)
	}
	apierr.JSON(w, http.StatusOK, out)
}

func studyIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "study_id"))
	if err != nil {
		apierr.Validation(w, "invalid study id")
		return primitive.NilObjectID, false
	}
	return oid, true
}
