package orguserstore

import (
	"testing"

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

func TestCreateAndGetByFirebaseUID(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Acme Research")

	_, err := store.Create(ctx, models.OrgUser{
		FirebaseUID:    "fb-owner-1",
		Email:          "owner@acme.test",
		Role:           models.RoleOwner,
		OrganizationID: org.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetByFirebaseUID(ctx, "fb-owner-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OrganizationID != org.ID || got.Role != models.RoleOwner {
		t.Errorf("unexpected membership: %+v", got)
	}

	if _, err := store.GetByFirebaseUID(ctx, "fb-nobody"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_DuplicateFirebaseUID(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Acme Research")
	other := fx.CreateOrganization(ctx, "Beacon Labs")

	u := models.OrgUser{FirebaseUID: "fb-dup", Email: "a@acme.test", Role: models.RoleMember, OrganizationID: org.ID}
	if _, err := store.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	u.OrganizationID = other.ID
	if _, err := store.Create(ctx, u); err != ErrDuplicateUser {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestListByOrganization(t *testing.T) {
	store, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Acme Research")
	other := fx.CreateOrganization(ctx, "Beacon Labs")

	fx.CreateOrgUser(ctx, org.ID, "fb-1", "one@acme.test", models.RoleOwner)
	fx.CreateOrgUser(ctx, org.ID, "fb-2", "two@acme.test", models.RoleMember)
	fx.CreateOrgUser(ctx, other.ID, "fb-3", "three@beacon.test", models.RoleOwner)

	users, err := store.ListByOrganization(ctx, org.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.OrganizationID != org.ID {
			t.Errorf("user %s leaked from another organization", u.Email)
		}
	}
}
