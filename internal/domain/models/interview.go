// internal/domain/models/interview.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interview statuses. Transitions are pending → completed only.
const (
	InterviewPending   = "pending"
	InterviewCompleted = "completed"
)

// Interview is both the session record and the credential record: the
// access token row *is* the session. Uniqueness constraints (access_token
// globally; study_id+external_participant_id when a pid is present) are
// enforced by indexes, not application locks.
type Interview struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	StudyID primitive.ObjectID `bson:"study_id" json:"study_id"`

	// AccessToken is opaque and single-use. It is the sole credential for
	// the public handoff endpoints and must never appear in logs or error
	// bodies.
	AccessToken string `bson:"access_token" json:"-"`

	// ExternalParticipantID is the recruitment-platform id carried on the
	// link ("pid"). Nil for bare links generated by researchers.
	ExternalParticipantID *string `bson:"external_participant_id,omitempty" json:"external_participant_id,omitempty"`
	PlatformSource        string  `bson:"platform_source,omitempty" json:"platform_source,omitempty"`

	Status      string     `bson:"status" json:"status"` // pending | completed
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time  `bson:"expires_at" json:"expires_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	// Artifact locations only; bytes live in object storage.
	TranscriptURI string `bson:"transcript_uri,omitempty" json:"transcript_uri,omitempty"`
	RecordingURI  string `bson:"recording_uri,omitempty" json:"recording_uri,omitempty"`
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`

	// VerityUserID is set exactly once, by a successful claim.
	VerityUserID *primitive.ObjectID `bson:"verity_user_id,omitempty" json:"verity_user_id,omitempty"`
	ClaimedAt    *time.Time          `bson:"claimed_at,omitempty" json:"claimed_at,omitempty"`
}

// Expired reports whether the interview's token TTL has elapsed at now.
// Expiry is a soft deadline checked lazily; no sweeper mutates rows.
func (iv Interview) Expired(now time.Time) bool {
	return now.After(iv.ExpiresAt)
}
