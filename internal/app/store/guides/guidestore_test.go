package guidestore

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/verity/internal/app/system/indexes"
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

func TestUpsert_CreateThenReplace(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Acme Research")
	study := fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")

	first, err := store.Upsert(ctx, study.ID, "# Warmup\nTell me about your last purchase.")
	if err != nil {
		t.Fatalf("initial upsert: %v", err)
	}
	if first.StudyID != study.ID {
		t.Errorf("guide bound to wrong study")
	}

	second, err := store.Upsert(ctx, study.ID, "# Warmup v2")
	if err != nil {
		t.Fatalf("replace upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replace created a new document")
	}
	if second.ContentMD != "# Warmup v2" {
		t.Errorf("content not replaced: %q", second.ContentMD)
	}

	got, err := store.GetByStudyID(ctx, study.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ContentMD != "# Warmup v2" {
		t.Errorf("stored content %q", got.ContentMD)
	}
}

func TestUpsert_ConcurrentConvergesOnOneDocument(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Acme Research")
	study := fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Upsert(ctx, study.ID, "# Guide"); err != nil {
				t.Errorf("concurrent upsert: %v", err)
			}
		}()
	}
	wg.Wait()

	n, err := db.Collection("interview_guides").CountDocuments(ctx, bson.M{"study_id": study.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 guide document, got %d", n)
	}
}

func TestExistsForStudy(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Acme Research")
	withGuide := fx.CreateStudy(ctx, org.ID, "With guide", "with-guide")
	without := fx.CreateStudy(ctx, org.ID, "Without guide", "without-guide")
	fx.CreateGuide(ctx, withGuide.ID, "# Guide")

	ok, err := store.ExistsForStudy(ctx, withGuide.ID)
	if err != nil || !ok {
		t.Errorf("expected guide to exist, ok=%v err=%v", ok, err)
	}
	ok, err = store.ExistsForStudy(ctx, without.ID)
	if err != nil || ok {
		t.Errorf("expected no guide, ok=%v err=%v", ok, err)
	}

	if _, err := store.GetByStudyID(ctx, without.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
