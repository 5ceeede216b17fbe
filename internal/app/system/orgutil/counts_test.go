package orgutil_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dalemusser/verity/internal/app/system/orgutil"
	"github.com/dalemusser/verity/internal/testutil"
)

func TestAggregateCountByField(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	org := fx.CreateOrganization(ctx, "Acme Research")
	s1 := fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")
	s2 := fx.CreateStudy(ctx, org.ID, "Mobile banking", "mobile-banking")

	fx.CreatePendingInterview(ctx, s1.ID, "prolific_a")
	fx.CreatePendingInterview(ctx, s1.ID, "prolific_b")
	fx.CreatePendingInterview(ctx, s2.ID, "mturk_c")

	counts, err := orgutil.AggregateCountByField(ctx, db, "interviews", bson.M{}, "study_id")
	if err != nil {
		t.Fatalf("AggregateCountByField failed: %v", err)
	}
	if counts[s1.ID] != 2 {
		t.Errorf("study 1 count: got %d, want 2", counts[s1.ID])
	}
	if counts[s2.ID] != 1 {
		t.Errorf("study 2 count: got %d, want 1", counts[s2.ID])
	}
}

func TestAggregateCountByField_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	counts, err := orgutil.AggregateCountByField(ctx, db, "interviews", bson.M{}, "study_id")
	if err != nil {
		t.Fatalf("AggregateCountByField failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected empty map, got %d entries", len(counts))
	}
}
