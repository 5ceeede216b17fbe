// internal/app/store/orgusers/orguserstore.go
package orguserstore

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

// Store owns the org_users collection: the server-side mapping from an
// authenticated firebase uid to an organization and role. Every
// organization-tenant request resolves membership here; nothing a
// client sends is ever trusted for that.
type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("org user not found")
	ErrDuplicateUser = errors.New("a user with this identity already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_users")}
}

func (s *Store) Create(ctx context.Context, u models.OrgUser) (models.OrgUser, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, u)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.OrgUser{}, ErrDuplicateUser
		}
		return models.OrgUser{}, err
	}
	return u, nil
}

// GetByFirebaseUID resolves the caller's membership.
func (s *Store) GetByFirebaseUID(ctx context.Context, firebaseUID string) (models.OrgUser, error) {
	var u models.OrgUser
	err := s.c.FindOne(ctx, bson.M{"firebase_uid": firebaseUID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.OrgUser{}, ErrNotFound
	}
	if err != nil {
		return models.OrgUser{}, err
	}
	return u, nil
}

// ListByOrganization returns the organization's users, oldest first.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.OrgUser, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.OrgUser
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
