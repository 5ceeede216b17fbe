package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/verity/internal/app/system/platform"
	"github.com/dalemusser/verity/internal/app/system/token"
	"github.com/dalemusser/verity/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance bound to the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization inserts a test organization.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateOrgUser inserts a researcher account in the given organization.
func (f *Fixtures) CreateOrgUser(ctx context.Context, orgID primitive.ObjectID, firebaseUID, email, role string) models.OrgUser {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.OrgUser{
		ID:             primitive.NewObjectID(),
		FirebaseUID:    firebaseUID,
		Email:          email,
		Role:           role,
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("org_users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test org user: %v", err)
	}
	return u
}

// CreateStudy inserts a study under the given organization.
func (f *Fixtures) CreateStudy(ctx context.Context, orgID primitive.ObjectID, title, slug string) models.Study {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Study{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Title:          title,
		Slug:           slug,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("studies").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test study: %v", err)
	}
	return s
}

// CreateGuide attaches an interview guide to a study.
func (f *Fixtures) CreateGuide(ctx context.Context, studyID primitive.ObjectID, contentMD string) models.InterviewGuide {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.InterviewGuide{
		ID:        primitive.NewObjectID(),
		StudyID:   studyID,
		ContentMD: contentMD,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("interview_guides").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test guide: %v", err)
	}
	return g
}

// CreatePendingInterview inserts a pending interview with a fresh token.
// pid may be empty for a bare link.
func (f *Fixtures) CreatePendingInterview(ctx context.Context, studyID primitive.ObjectID, pid string) models.Interview {
	f.t.Helper()

	now := time.Now().UTC()
	iv := models.Interview{
		ID:          primitive.NewObjectID(),
		StudyID:     studyID,
		AccessToken: token.New(),
		Status:      models.InterviewPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	if pid != "" {
		iv.ExternalParticipantID = &pid
		iv.PlatformSource = platform.Source(pid)
	}
	if _, err := f.db.Collection("interviews").InsertOne(ctx, iv); err != nil {
		f.t.Fatalf("failed to create test interview: %v", err)
	}
	return iv
}

// CompleteInterview marks an existing interview completed directly,
// bypassing the store, for tests that need a terminal-state row.
func (f *Fixtures) CompleteInterview(ctx context.Context, id primitive.ObjectID, transcriptURI string) {
	f.t.Helper()

	now := time.Now().UTC()
	_, err := f.db.Collection("interviews").UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":         models.InterviewCompleted,
			"completed_at":   now,
			"transcript_uri": transcriptURI,
		},
	})
	if err != nil {
		f.t.Fatalf("failed to complete test interview: %v", err)
	}
}

// CreateVerityUser inserts a participant identity.
func (f *Fixtures) CreateVerityUser(ctx context.Context, firebaseUID, email string) models.VerityUser {
	f.t.Helper()

	u := models.VerityUser{
		ID:          primitive.NewObjectID(),
		FirebaseUID: firebaseUID,
		Email:       email,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("verity_users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test verity user: %v", err)
	}
	return u
}
