// internal/app/features/organizations/create.go
package organizations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	organizationstore "github.com/dalemusser/verity/internal/app/store/organizations"
	orguserstore "github.com/dalemusser/verity/internal/app/store/orgusers"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/inputval"
	"github.com/dalemusser/verity/internal/app/system/limits"
	"github.com/dalemusser/verity/internal/app/system/normalize"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
	"github.com/dalemusser/verity/internal/domain/models"
)

// createRequest provisions an organization and, optionally, its first
// owner account in one call. Super-admin only: organizations are
// provisioned by platform staff, not self-service.
type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	OwnerFirebaseUID string `json:"owner_firebase_uid,omitempty"`
	OwnerEmail       string `json:"owner_email,omitempty"`
}

type createResponse struct {
	Organization models.Organization `json:"organization"`
	Owner        *models.OrgUser     `json:"owner,omitempty"`
}

// HandleCreate handles POST /api/orgs.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var req createRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Validation(w, "invalid JSON body")
		return
	}
	req.Name = normalize.Name(req.Name)
	if req.Name == "" {
		apierr.Validation(w, "name is required")
		return
	}
	if (req.OwnerFirebaseUID == "") != (req.OwnerEmail == "") {
		apierr.Validation(w, "owner_firebase_uid and owner_email must be supplied together")
		return
	}
	if req.OwnerEmail != "" {
		req.OwnerEmail = normalize.Email(req.OwnerEmail)
		if !inputval.IsValidEmail(req.OwnerEmail) {
			apierr.Validation(w, "owner_email is not a valid email address")
			return
		}
	}

	org, err := organizationstore.New(h.DB).Create(ctx, models.Organization{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			apierr.Conflict(w, "organization name already in use")
			return
		}
		h.Log.Error("organization create failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	resp := createResponse{Organization: org}
	if req.OwnerFirebaseUID != "" {
		owner, err := orguserstore.New(h.DB).Create(ctx, models.OrgUser{
			FirebaseUID:    req.OwnerFirebaseUID,
			Email:          req.OwnerEmail,
			Role:           models.RoleOwner,
			OrganizationID: org.ID,
		})
		if err != nil {
			if errors.Is(err, orguserstore.ErrDuplicateUser) {
				apierr.Conflict(w, "owner account already belongs to an organization")
				return
			}
			h.Log.Error("organization owner create failed",
				zap.String("organization_id", org.ID.Hex()), zap.Error(err))
			apierr.Internal(w)
			return
		}
		resp.Owner = &owner
	}

	h.Log.Info("organization created",
		zap.String("organization_id", org.ID.Hex()),
		zap.String("name", org.Name))

	apierr.JSON(w, http.StatusCreated, resp)
}
