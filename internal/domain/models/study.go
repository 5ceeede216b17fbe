// internal/domain/models/study.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Study is a published research study. The slug is the public handle
// embedded in recruitment links; it is unique across all organizations
// and immutable once the study is published.
type Study struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Slug           string             `bson:"slug" json:"slug"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// InterviewGuide is the interview script the external engine runs from.
// At most one guide exists per study (unique study_id index); a study
// without a guide cannot start sessions.
type InterviewGuide struct {
	ID        primitive.ObjectID `bson:"_id" json:"-"`
	StudyID   primitive.ObjectID `bson:"study_id" json:"study_id"`
	ContentMD string             `bson:"content_md" json:"content_md"`
	CreatedAt time.Time          `bson:"created_at" json:"-"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
