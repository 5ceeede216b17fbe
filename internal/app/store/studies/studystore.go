// internal/app/store/studies/studystore.go
package studystore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/verity/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("study not found")
	ErrDuplicateSlug = errors.New("a study with this slug already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("studies")}
}

func (s *Store) Create(ctx context.Context, study models.Study) (models.Study, error) {
	now := time.Now().UTC()
	study.ID = primitive.NewObjectID()
	study.CreatedAt = now
	study.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, study)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Study{}, ErrDuplicateSlug
		}
		return models.Study{}, err
	}
	return study, nil
}

// GetBySlug is the public resolution path: slugs arrive on unauthenticated
// recruitment links.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Study, error) {
	var study models.Study
	err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&study)
	if err == mongo.ErrNoDocuments {
		return models.Study{}, ErrNotFound
	}
	if err != nil {
		return models.Study{}, err
	}
	return study, nil
}

// GetByID loads a study without tenancy scoping. Internal callers only
// (the handoff path reaches a study through a validated token, not
// through an organization).
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Study, error) {
	var study models.Study
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&study)
	if err == mongo.ErrNoDocuments {
		return models.Study{}, ErrNotFound
	}
	if err != nil {
		return models.Study{}, err
	}
	return study, nil
}

// GetForOrganization loads a study only if it belongs to orgID. Tenancy
// scoping happens in the query, not after the read.
func (s *Store) GetForOrganization(ctx context.Context, id, orgID primitive.ObjectID) (models.Study, error) {
	var study models.Study
	err := s.c.FindOne(ctx, bson.M{"_id": id, "organization_id": orgID}).Decode(&study)
	if err == mongo.ErrNoDocuments {
		return models.Study{}, ErrNotFound
	}
	if err != nil {
		return models.Study{}, err
	}
	return study, nil
}

// ListByOrganization returns the organization's studies, newest first.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Study, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var studies []models.Study
	if err := cur.All(ctx, &studies); err != nil {
		return nil, err
	}
	return studies, nil
}

// Update modifies title/description within the owning organization.
// The slug is immutable once published and is deliberately not settable.
func (s *Store) Update(ctx context.Context, id, orgID primitive.ObjectID, title, description *string) (models.Study, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if title != nil {
		set["title"] = *title
	}
	if description != nil {
		set["description"] = *description
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "organization_id": orgID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var study models.Study
	if err := res.Decode(&study); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Study{}, ErrNotFound
		}
		return models.Study{}, err
	}
	return study, nil
}

// Delete removes a study within the owning organization.
func (s *Store) Delete(ctx context.Context, id, orgID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "organization_id": orgID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
