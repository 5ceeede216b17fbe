// internal/app/features/claims/claim.go
package claims

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	participantstore "github.com/dalemusser/verity/internal/app/store/participants"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/fireauth"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
	"github.com/dalemusser/verity/internal/app/system/token"
	"github.com/dalemusser/verity/internal/domain/models"
)

// claimResponse reports the bound interview and the resulting profile
// identity set.
type claimResponse struct {
	InterviewID string                     `json:"interview_id"`
	ClaimedAt   *time.Time                 `json:"claimed_at,omitempty"`
	Profile     claimProfile               `json:"profile"`
	Identities  []models.PlatformIdentity  `json:"identities"`
}

type claimProfile struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// ServeClaim handles POST /interview/{token}/claim.
//
// Claiming binds a completed interview to the caller's persistent
// identity, first-claim-wins. A pending interview cannot be claimed:
// that would let an authenticated user hijack someone else's session in
// flight. Re-claim by the same identity acks idempotently.
func (h *Handler) ServeClaim(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ident, ok := fireauth.Identity(r)
	if !ok {
		apierr.Unauthorized(w, "authentication required")
		return
	}
	accessToken := chi.URLParam(r, "token")
	if !token.Plausible(accessToken) {
		apierr.NotFound(w, "interview not found")
		return
	}

	profiles := participantstore.New(h.DB)
	profile, err := profiles.UpsertByFirebaseUID(ctx, ident.UID, ident.Email)
	if err != nil {
		h.Log.Error("claim: profile upsert failed", zap.String("uid", ident.UID), zap.Error(err))
		apierr.Internal(w)
		return
	}

	iv, err := interviewstore.New(h.DB).Claim(ctx, accessToken, profile.ID)
	if err != nil {
		switch {
		case errors.Is(err, interviewstore.ErrNotFound):
			apierr.NotFound(w, "interview not found")
		case errors.Is(err, interviewstore.ErrNotCompleted):
			apierr.NotCompleted(w, "interview is not completed yet")
		case errors.Is(err, interviewstore.ErrClaimConflict):
			apierr.Conflict(w, "interview already claimed by another account")
		default:
			h.Log.Error("claim failed", zap.String("uid", ident.UID), zap.Error(err))
			apierr.Internal(w)
		}
		return
	}

	// Fold the interview's platform identity into the profile. $addToSet
	// keeps this idempotent across re-claims.
	if iv.ExternalParticipantID != nil && iv.PlatformSource != "" {
		profile, err = profiles.AddIdentity(ctx, profile.ID, models.PlatformIdentity{
			PlatformSource:        iv.PlatformSource,
			ExternalParticipantID: *iv.ExternalParticipantID,
		})
		if err != nil {
			h.Log.Error("claim: identity merge failed",
				zap.String("uid", ident.UID),
				zap.String("interview_id", iv.ID.Hex()),
				zap.Error(err))
			apierr.Internal(w)
			return
		}
	}

	if err := profiles.TouchSignIn(ctx, profile.ID); err != nil {
		h.Log.Warn("claim: sign-in timestamp update failed", zap.Error(err))
	}

	h.Log.Info("interview claimed",
		zap.String("interview_id", iv.ID.Hex()),
		zap.String("verity_user_id", profile.ID.Hex()))

	apierr.JSON(w, http.StatusOK, claimResponse{
		InterviewID: iv.ID.Hex(),
		ClaimedAt:   iv.ClaimedAt,
		Profile:     claimProfile{ID: profile.ID.Hex(), Email: profile.Email},
		Identities:  profile.Identities,
	})
}
