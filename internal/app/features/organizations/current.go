// internal/app/features/organizations/current.go
package organizations

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	organizationstore "github.com/dalemusser/verity/internal/app/store/organizations"
	orguserstore "github.com/dalemusser/verity/internal/app/store/orgusers"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/membership"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
	"github.com/dalemusser/verity/internal/domain/models"
)

// ServeCurrent handles GET /api/orgs/current: the caller's own
// organization, resolved from their membership row.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, ok := membership.Require(ctx, w, r, h.DB)
	if !ok {
		return
	}

	org, err := organizationstore.New(h.DB).GetByID(ctx, member.OrganizationID)
	if err != nil {
		h.Log.Error("current org lookup failed",
			zap.String("organization_id", member.OrganizationID.Hex()), zap.Error(err))
		apierr.Internal(w)
		return
	}
	apierr.JSON(w, http.StatusOK, org)
}

// ServeUsers handles GET /api/orgs/current/users, owner/admin only.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, ok := membership.RequireRole(ctx, w, r, h.DB, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}

	users, err := orguserstore.New(h.DB).ListByOrganization(ctx, member.OrganizationID)
	if err != nil {
		h.Log.Error("org user list failed",
			zap.String("organization_id", member.OrganizationID.Hex()), zap.Error(err))
		apierr.Internal(w)
		return
	}
	if users == nil {
		users = []models.OrgUser{}
	}
	apierr.JSON(w, http.StatusOK, users)
}
