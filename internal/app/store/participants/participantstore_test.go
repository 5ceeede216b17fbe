package participantstore

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/verity/internal/app/system/indexes"
	"github.com/dalemusser/verity/internal/domain/models"
	"github.com/dalemusser/verity/internal/testutil"
)

func setup(t *testing.T) (*Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return New(db), db
}

func TestUpsertByFirebaseUID_CreatesOnce(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.UpsertByFirebaseUID(ctx, "fb-p1", "p1@example.test")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.FirebaseUID != "fb-p1" || first.Email != "p1@example.test" {
		t.Errorf("unexpected participant: %+v", first)
	}

	again, err := store.UpsertByFirebaseUID(ctx, "fb-p1", "p1@example.test")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("second upsert created a new row")
	}
}

func TestUpsertByFirebaseUID_ConcurrentFirstContact(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	const workers = 12
	var wg sync.WaitGroup
	results := make([]models.VerityUser, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = store.UpsertByFirebaseUID(ctx, "fb-racer", "racer@example.test")
		}(i)
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i].ID != results[0].ID {
			t.Errorf("worker %d got a different row", i)
		}
	}

	n, err := db.Collection("verity_users").CountDocuments(ctx, bson.M{"firebase_uid": "fb-racer"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
}

func TestAddIdentity_IdempotentSetUnion(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.UpsertByFirebaseUID(ctx, "fb-p2", "p2@example.test")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	prolific := models.PlatformIdentity{PlatformSource: "prolific", ExternalParticipantID: "prolific_abc123"}
	mturk := models.PlatformIdentity{PlatformSource: "mturk", ExternalParticipantID: "mturk_Z9"}

	if _, err := store.AddIdentity(ctx, u.ID, prolific); err != nil {
		t.Fatalf("add prolific: %v", err)
	}
	if _, err := store.AddIdentity(ctx, u.ID, mturk); err != nil {
		t.Fatalf("add mturk: %v", err)
	}
	got, err := store.AddIdentity(ctx, u.ID, prolific)
	if err != nil {
		t.Fatalf("re-add prolific: %v", err)
	}

	if len(got.Identities) != 2 {
		t.Fatalf("expected 2 identities, got %d: %+v", len(got.Identities), got.Identities)
	}
}

func TestGetByFirebaseUID_NotFound(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByFirebaseUID(ctx, "fb-missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
