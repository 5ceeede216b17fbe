// internal/app/store/guides/guidestore.go
package guidestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/verity/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("interview guide not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("interview_guides")}
}

// Upsert creates or replaces the study's guide. The unique study_id
// index makes concurrent upserts converge on one document.
func (s *Store) Upsert(ctx context.Context, studyID primitive.ObjectID, contentMD string) (models.InterviewGuide, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"study_id": studyID},
		bson.M{
			"$set": bson.M{"content_md": contentMD, "updated_at": now},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"study_id":   studyID,
				"created_at": now,
			},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var g models.InterviewGuide
	if err := res.Decode(&g); err != nil {
		return models.InterviewGuide{}, err
	}
	return g, nil
}

// GetByStudyID returns the study's guide.
func (s *Store) GetByStudyID(ctx context.Context, studyID primitive.ObjectID) (models.InterviewGuide, error) {
	var g models.InterviewGuide
	err := s.c.FindOne(ctx, bson.M{"study_id": studyID}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return models.InterviewGuide{}, ErrNotFound
	}
	if err != nil {
		return models.InterviewGuide{}, err
	}
	return g, nil
}

// ExistsForStudy reports whether the study has a guide without loading
// its content. The resolver uses this as a start precondition.
func (s *Store) ExistsForStudy(ctx context.Context, studyID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"study_id": studyID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
