// internal/domain/models/orguser.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Org user roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// OrgUser is a researcher account inside one organization. The
// firebase_uid → organization mapping stored here is the server-side
// source of truth for the organization trust domain; org ids supplied
// by clients are only ever checked against it, never trusted.
type OrgUser struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	FirebaseUID    string             `bson:"firebase_uid" json:"-"`
	Email          string             `bson:"email" json:"email"`
	Role           string             `bson:"role" json:"role"` // owner | admin | member
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
