// internal/app/store/participants/participantstore.go
package participantstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/verity/internal/app/system/normalize"
	"github.com/dalemusser/verity/internal/domain/models"
)

// Store owns the verity_users collection: global participant identities
// and their accumulated platform-identity sets.
type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("participant not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("verity_users")}
}

// UpsertByFirebaseUID returns the participant for firebaseUID, creating
// the row on first contact. Concurrent first claims race on the unique
// firebase_uid index; the loser re-reads the winner's row.
func (s *Store) UpsertByFirebaseUID(ctx context.Context, firebaseUID, email string) (models.VerityUser, error) {
	var u models.VerityUser
	err := s.c.FindOne(ctx, bson.M{"firebase_uid": firebaseUID}).Decode(&u)
	if err == nil {
		return u, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.VerityUser{}, err
	}

	u = models.VerityUser{
		ID:          primitive.NewObjectID(),
		FirebaseUID: firebaseUID,
		Email:       normalize.Email(email),
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			var winner models.VerityUser
			if ferr := s.c.FindOne(ctx, bson.M{"firebase_uid": firebaseUID}).Decode(&winner); ferr != nil {
				return models.VerityUser{}, ferr
			}
			return winner, nil
		}
		return models.VerityUser{}, err
	}
	return u, nil
}

// GetByFirebaseUID loads a participant.
func (s *Store) GetByFirebaseUID(ctx context.Context, firebaseUID string) (models.VerityUser, error) {
	var u models.VerityUser
	err := s.c.FindOne(ctx, bson.M{"firebase_uid": firebaseUID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.VerityUser{}, ErrNotFound
	}
	if err != nil {
		return models.VerityUser{}, err
	}
	return u, nil
}

// AddIdentity merges a (platform, external id) pair into the profile's
// identity set. $addToSet makes the union idempotent: merging the same
// pair twice is a no-op.
func (s *Store) AddIdentity(ctx context.Context, id primitive.ObjectID, identity models.PlatformIdentity) (models.VerityUser, error) {
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"identities": identity}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var u models.VerityUser
	if err := res.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.VerityUser{}, ErrNotFound
		}
		return models.VerityUser{}, err
	}
	return u, nil
}

// TouchSignIn records a participant sign-in.
func (s *Store) TouchSignIn(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_sign_in": time.Now().UTC()}})
	return err
}
