// internal/app/features/studies/crud.go
package studies

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/membership"
	"github.com/dalemusser/verity/internal/app/system/orgutil"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
	"github.com/dalemusser/verity/internal/domain/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type createStudyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug"`
}

type updateStudyRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// HandleCreate handles POST /api/orgs/{org_id}/studies.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, ok := membership.Require(ctx, w, r, h.DB)
	if !ok {
		return
	}

	var req createStudyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Validation(w, "invalid JSON body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Title == "" {
		apierr.Validation(w, "title is required")
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		apierr.Validation(w, "slug must be lowercase letters, digits, and hyphens")
		return
	}

	study, err := studystore.New(h.DB).Create(ctx, models.Study{
		OrganizationID: member.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		Slug:           req.Slug,
	})
	if err != nil {
		if errors.Is(err, studystore.ErrDuplicateSlug) {
			apierr.Conflict(w, "slug already in use")
			return
		}
		h.Log.Error("study create failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	h.Log.Info("study created",
		zap.String("study_id", study.ID.Hex()),
		zap.String("slug", study.Slug),
		zap.String("organization_id", member.OrganizationID.Hex()))

	apierr.JSON(w, http.StatusCreated, study)
}

type studyListEntry struct {
	models.Study
	InterviewCount int64 `json:"interview_count"`
}

// ServeList handles GET /api/orgs/{org_id}/studies. Each entry carries
// its interview count so the study list can show recruitment progress
// without N follow-up requests.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, ok := membership.Require(ctx, w, r, h.DB)
	if !ok {
		return
	}

	studies, err := studystore.New(h.DB).ListByOrganization(ctx, member.OrganizationID)
	if err != nil {
		h.Log.Error("study list failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	entries := make([]studyListEntry, 0, len(studies))
	if len(studies) > 0 {
		ids := make([]primitive.ObjectID, 0, len(studies))
		for _, s := range studies {
			ids = append(ids, s.ID)
		}
		counts, err := orgutil.AggregateCountByField(ctx, h.DB, "interviews",
			bson.M{"study_id": bson.M{"$in": ids}}, "study_id")
		if err != nil {
			h.Log.Error("interview count aggregation failed", zap.Error(err))
			apierr.Internal(w)
			return
		}
		for _, s := range studies {
			entries = append(entries, studyListEntry{Study: s, InterviewCount: counts[s.ID]})
		}
	}
	apierr.JSON(w, http.StatusOK, entries)
}

// ServeGet handles GET /api/orgs/{org_id}/studies/{study_id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
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

	study, err := studystore.New(h.DB).GetForOrganization(ctx, studyID, member.OrganizationID)
	if err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "study not found")
			return
		}
		h.Log.Error("study get failed", zap.Error(err))
		apierr.Internal(w)
		return
	}
	apierr.JSON(w, http.StatusOK, study)
}

// HandleUpdate handles PATCH /api/orgs/{org_id}/studies/{study_id}.
// The slug is immutable once published; only title and description move.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req updateStudyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.Validation(w, "invalid JSON body")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		apierr.Validation(w, "title must not be empty")
		return
	}

	study, err := studystore.New(h.DB).Update(ctx, studyID, member.OrganizationID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "study not found")
			return
		}
		h.Log.Error("study update failed", zap.Error(err))
		apierr.Internal(w)
		return
	}
	apierr.JSON(w, http.StatusOK, study)
}

// HandleDelete handles DELETE /api/orgs/{org_id}/studies/{study_id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, ok := membership.RequireRole(ctx, w, r, h.DB, models.RoleOwner, models.RoleAdmin)
	if !ok {
		return
	}
	studyID, ok := studyIDParam(w, r)
	if !ok {
		return
	}

	if err := studystore.New(h.DB).Delete(ctx, studyID, member.OrganizationID); err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "study not found")
			return
		}
		h.Log.Error("study delete failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	h.Log.Info("study deleted",
		zap.String("study_id", studyID.Hex()),
		zap.String("organization_id", member.OrganizationID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

func studyIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "study_id"))
	if err != nil {
		apierr.Validation(w, "invalid study id")
		return primitive.NilObjectID, false
	}
	return oid, true
}
