// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail
fast.

The unique indexes here are load-bearing, not hygiene: the race-safe
dedup create in the interview store and the single-claim guarantee both
depend on the database refusing the second writer.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensureOrgUsers(ctx, db); err != nil {
		problems = append(problems, "org_users: "+err.Error())
	}
	if err := ensureStudies(ctx, db); err != nil {
		problems = append(problems, "studies: "+err.Error())
	}
	if err := ensureGuides(ctx, db); err != nil {
		problems = append(problems, "interview_guides: "+err.Error())
	}
	if err := ensureInterviews(ctx, db); err != nil {
		problems = append(problems, "interviews: "+err.Error())
	}
	if err := ensureVerityUsers(ctx, db); err != nil {
		problems = append(problems, "verity_users: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("organizations"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_name_ci").SetUnique(true),
		},
	})
}

func ensureOrgUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("org_users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "firebase_uid", Value: 1}},
			Options: options.Index().SetName("uniq_firebase_uid").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetName("by_organization"),
		},
	})
}

func ensureStudies(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("studies"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("uniq_slug").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetName("by_organization"),
		},
	})
}

func ensureGuides(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("interview_guides"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "study_id", Value: 1}},
			Options: options.Index().SetName("uniq_study").SetUnique(true),
		},
	})
}

func ensureInterviews(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("interviews"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "access_token", Value: 1}},
			Options: options.Index().SetName("uniq_access_token").SetUnique(true),
		},
		{
			// At most one interview per (study, external participant).
			// Partial: bare links have no pid and must never collide.
			Keys: bson.D{{Key: "study_id", Value: 1}, {Key: "external_participant_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_study_participant").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"external_participant_id": bson.M{"$type": "string"},
				}),
		},
		{
			Keys:    bson.D{{Key: "study_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_study_created"),
		},
		{
			Keys:    bson.D{{Key: "verity_user_id", Value: 1}},
			Options: options.Index().SetName("by_verity_user"),
		},
	})
}

func ensureVerityUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("verity_users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "firebase_uid", Value: 1}},
			Options: options.Index().SetName("uniq_firebase_uid").SetUnique(true),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name string `bson:"name"`
	Key  bson.D `bson:"key"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// Mongo/DocDB return IndexOptionsConflict when an index with the same
// keys already exists under a different name or options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		sig := keySig(m.Keys.(bson.D))

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if !isOptionsConflictErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
				continue
			}
			// Same keys exist under another name/options: drop and recreate
			// so the declared set stays authoritative.
			cur, lerr := coll.Indexes().List(ctx)
			if lerr != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): list after conflict: %v", coll.Name(), name, lerr))
				continue
			}
			var stale string
			for cur.Next(ctx) {
				var idx existingIndex
				if derr := cur.Decode(&idx); derr != nil {
					continue
				}
				if keySig(idx.Key) == sig && idx.Name != name {
					stale = idx.Name
					break
				}
			}
			cur.Close(ctx)
			if stale == "" {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
				continue
			}
			if _, derr := coll.Indexes().DropOne(ctx, stale); derr != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop stale %q: %v", coll.Name(), name, stale, derr))
				continue
			}
			if _, cerr := coll.Indexes().CreateOne(ctx, m); cerr != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): recreate: %v", coll.Name(), name, cerr))
				continue
			}
			zap.L().Info("index recreated",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig))
			continue
		}

		zap.L().Debug("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
