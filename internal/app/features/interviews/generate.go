// internal/app/features/interviews/generate.go
package interviews

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/engine"
	"github.com/dalemusser/verity/internal/app/system/membership"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
	"github.com/dalemusser/verity/internal/domain/models"
)

// generateResponse carries a freshly minted single-use link. This is
// the one researcher-facing place an access token appears: the
// researcher is the one handing the link out.
type generateResponse struct {
	Interview models.Interview `json:"interview"`
	StartURL  string           `json:"start_url"`
}

// HandleGenerate handles POST /api/orgs/{org_id}/studies/{study_id}/interviews.
//
// A bare link has no external participant id, so every call creates a
// distinct interview; there is no dedup key to converge on.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
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
		h.Log.Error("generate: study lookup failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	iv, err := interviewstore.New(h.DB).Create(ctx, studyID, h.TokenTTL)
	if err != nil {
		h.Log.Error("generate: interview create failed", zap.String("study_id", studyID.Hex()), zap.Error(err))
		apierr.Internal(w)
		return
	}

	h.Log.Info("bare interview link generated",
		zap.String("interview_id", iv.ID.Hex()),
		zap.String("study_id", studyID.Hex()))

	apierr.JSON(w, http.StatusCreated, generateResponse{
		Interview: iv,
		StartURL:  engine.EntryURL(h.EngineBaseURL, iv.AccessToken, h.CallbackBaseURL),
	})
}
