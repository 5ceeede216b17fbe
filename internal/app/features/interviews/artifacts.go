// internal/app/features/interviews/artifacts.go
package interviews

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	interviewstore "github.com/dalemusser/verity/internal/app/store/interviews"
	studystore "github.com/dalemusser/verity/internal/app/store/studies"
	"github.com/dalemusser/verity/internal/app/system/apierr"
	"github.com/dalemusser/verity/internal/app/system/membership"
	"github.com/dalemusser/verity/internal/app/system/timeouts"
)

// ServeArtifact handles
// GET /api/orgs/{org_id}/interviews/{id}/artifacts/{filename}.
//
// The handler stores artifact locations only; bytes sit in object
// storage. Local storage streams the file directly, any other backend
// redirects to a short-lived presigned URL, and absolute http(s) URIs
// recorded by the engine redirect as-is. Ownership runs interview →
// study → organization before anything is served.
func (h *Handler) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	member, ok := membership.Require(ctx, w, r, h.DB)
	if !ok {
		return
	}

	ivID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Validation(w, "invalid interview id")
		return
	}
	filename := chi.URLParam(r, "filename")

	iv, err := interviewstore.New(h.DB).GetByID(ctx, ivID)
	if err != nil {
		if errors.Is(err, interviewstore.ErrNotFound) {
			apierr.NotFound(w, "interview not found")
			return
		}
		h.Log.Error("artifact: interview lookup failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	// Cross-org requests read as not-found, indistinguishable from an
	// interview that does not exist.
	if _, err := studystore.New(h.DB).GetForOrganization(ctx, iv.StudyID, member.OrganizationID); err != nil {
		if errors.Is(err, studystore.ErrNotFound) {
			apierr.NotFound(w, "interview not found")
			return
		}
		h.Log.Error("artifact: study lookup failed", zap.Error(err))
		apierr.Internal(w)
		return
	}

	uri := artifactURI(iv.TranscriptURI, iv.RecordingURI, filename)
	if uri == "" {
		apierr.NotFound(w, "artifact not found")
		return
	}

	// Engine-hosted artifacts carry absolute URLs; hand the caller off.
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		http.Redirect(w, r, uri, http.StatusSeeOther)
		return
	}

	contentDisposition := "attachment; filename=" + `"` + filename + `"`
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if localStorage, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := localStorage.GetFullPath(uri)
		if err != nil {
			h.Log.Error("artifact: file path resolution failed",
				zap.Error(err), zap.String("path", uri))
			apierr.Internal(w)
			return
		}
		w.Header().Set("Content-Disposition", contentDisposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, uri, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: contentDisposition,
	})
	if err != nil {
		h.Log.Error("artifact: presigned URL generation failed",
			zap.Error(err), zap.String("path", uri))
		apierr.Internal(w)
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}

// artifactURI matches the requested filename to one of the interview's
// recorded artifact locations. "transcript" and "recording" select by
// kind; otherwise the filename must equal the stored location's base name.
func artifactURI(transcriptURI, recordingURI, filename string) string {
	switch filename {
	case "transcript":
		return transcriptURI
	case "recording":
		return recordingURI
	}
	if transcriptURI != "" && filename == baseName(transcriptURI) {
		return transcriptURI
	}
	if recordingURI != "" && filename == baseName(recordingURI) {
		return recordingURI
	}
	return ""
}

func baseName(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(uri)
}
