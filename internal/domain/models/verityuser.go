// internal/domain/models/verityuser.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlatformIdentity is one (platform, external id) pair a participant has
// claimed an interview under. The set on VerityUser grows by set-union;
// adding an existing pair is a no-op.
type PlatformIdentity struct {
	PlatformSource        string `bson:"platform_source" json:"platform_source"`
	ExternalParticipantID string `bson:"external_participant_id" json:"external_participant_id"`
}

// VerityUser is a persistent participant identity. It is global — not
// scoped to any organization — because the participant dashboard
// aggregates claimed interviews across every study and tenant.
type VerityUser struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	FirebaseUID string             `bson:"firebase_uid" json:"-"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName string             `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Identities  []PlatformIdentity `bson:"identities,omitempty" json:"identities,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	LastSignIn  *time.Time         `bson:"last_sign_in,omitempty" json:"last_sign_in,omitempty"`
}
