// Package membership resolves the authenticated caller's organization
// membership server-side.
//
// The organization trust domain never takes an org id from the client
// as an authorization input: the caller's membership row in org_users
// is the source of truth, and a client-supplied {org_id} path segment
// may only confirm (never widen) what the row already grants.
package membership

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	orguserstore "github.com/dalemusser/verity/internal/app/store/orgusers"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/fireauth"
	"github.com/dalemusser/verity/internal/domain/models"
)

// Require resolves the caller's membership and, when the route carries
// an {org_id} segment, verifies it names the caller's own organization.
// On failure it writes the API error and returns ok=false.
func Require(ctx context.Context, w http.ResponseWriter, r *http.Request, db *mongo.Database) (models.OrgUser, bool) {
	ident, ok := fireauth.Identity(r)
	if !ok {
		apierr.Unauthorized(w, "authentication required")
		return models.OrgUser{}, false
	}

	member, err := orguserstore.New(db).GetByFirebaseUID(ctx, ident.UID)
	if err != nil {
		if errors.Is(err, orguserstore.ErrNotFound) {
			apierr.Forbidden(w, "no organization membership")
			return models.OrgUser{}, false
		}
		apierr.Internal(w)
		return models.OrgUser{}, false
	}

	if hex := chi.URLParam(r, "org_id"); hex != "" {
		oid, err := primitive.ObjectIDFromHex(hex)
		if err != nil || oid != member.OrganizationID {
			apierr.Forbidden(w, "organization access denied")
			return models.OrgUser{}, false
		}
	}

	return member, true
}

// RequireRole is Require plus a role check against the membership row.
func RequireRole(ctx context.Context, w http.ResponseWriter, r *http.Request, db *mongo.Database, roles ...string) (models.OrgUser, bool) {
	member, ok := Require(ctx, w, r, db)
	if !ok {
		return models.OrgUser{}, false
	}
	for _, role := range roles {
		if member.Role == role {
			return member, true
		}
	}
	apierr.Forbidden(w, "insufficient role")
	return models.OrgUser{}, false
}
