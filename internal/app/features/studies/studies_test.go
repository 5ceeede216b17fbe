package studies_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/verity/internal/app/features/interviews"
	"github.com/dalemusser/verity/internal/app/features/organizations"
	"github.com/dalemusser/verity/internal/app/features/studies"
	"github.com/dalemusser/verity/internal/app/system/fireauth"
	"github.com/dalemusser/verity/internal/app/system/indexes"
	"github.com/dalemusser/verity/internal/domain/models"
	"github.com/dalemusser/verity/internal/testutil"
)

func setup(t *testing.T) (http.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	nop := zap.NewNop()
	studiesHandler := studies.NewHandler(db, nop)
	interviewsHandler := interviews.NewHandler(db, nil, "http://engine.test", "http://verity.test", 24*time.Hour, nop)
	orgHandler := organizations.NewHandler(db, nop)

	r := chi.NewRouter()
	r.Mount("/api/orgs", organizations.Routes(orgHandler,
		studies.Routes(studiesHandler, interviewsHandler),
		interviews.ArtifactRoutes(interviewsHandler)))
	return r, testutil.NewFixtures(t, db), db
}

func authedJSON(method, target, body string, c *fireauth.Claims) *http.Request {
	return fireauth.WithTestIdentity(testutil.NewJSONRequest(method, target, body), c)
}

func TestHandleCreate_StudyLifecycle(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	fx.CreateOrgUser(ctx, org.ID, "fb-res-1", "res@acme.test", models.RoleMember)
	base := "/api/orgs/" + org.ID.Hex() + "/studies"

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, authedJSON("POST", base,
		`{"title":"Checkout flow","description":"Round one","slug":"checkout-flow"}`,
		testutil.OrgIdentity("fb-res-1")))
	rec.AssertStatus(t, http.StatusCreated)

	var created models.Study
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Slug != "checkout-flow" || created.OrganizationID != org.ID {
		t.Errorf("unexpected study: %+v", created)
	}

	// Duplicate slug conflicts.
	dup := testutil.NewRecorder()
	router.ServeHTTP(dup, authedJSON("POST", base,
		`{"title":"Another","slug":"checkout-flow"}`, testutil.OrgIdentity("fb-res-1")))
	dup.AssertStatus(t, http.StatusConflict)

	// Patch moves title, never the slug.
	patch := testutil.NewRecorder()
	router.ServeHTTP(patch, authedJSON("PATCH", base+"/"+created.ID.Hex(),
		`{"title":"Checkout flow v2"}`, testutil.OrgIdentity("fb-res-1")))
	patch.AssertStatus(t, http.StatusOK)
	patch.AssertContains(t, "Checkout flow v2")
	patch.AssertContains(t, `"slug":"checkout-flow"`)
}

func TestHandleCreate_Validation(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	fx.CreateOrgUser(ctx, org.ID, "fb-res-1", "res@acme.test", models.RoleMember)
	base := "/api/orgs/" + org.ID.Hex() + "/studies"

	for name, body := range map[string]string{
		"missing title": `{"slug":"checkout-flow"}`,
		"bad slug":      `{"title":"Checkout","slug":"Checkout Flow!"}`,
		"bad json":      `{`,
	} {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, authedJSON("POST", base, body, testutil.OrgIdentity("fb-res-1")))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: got %d, want 422", name, rec.Code)
		}
	}
}

func TestServeList_InterviewCounts(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	fx.CreateOrgUser(ctx, org.ID, "fb-res-1", "res@acme.test", models.RoleMember)
	s1 := fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")
	s2 := fx.CreateStudy(ctx, org.ID, "Mobile banking", "mobile-banking")
	fx.CreatePendingInterview(ctx, s1.ID, "prolific_a")
	fx.CreatePendingInterview(ctx, s1.ID, "prolific_b")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET",
		"/api/orgs/"+org.ID.Hex()+"/studies", testutil.OrgIdentity("fb-res-1")))
	rec.AssertStatus(t, http.StatusOK)

	var entries []struct {
		ID             string `json:"id"`
		InterviewCount int64  `json:"interview_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 studies, got %d", len(entries))
	}
	counts := map[string]int64{}
	for _, e := range entries {
		counts[e.ID] = e.InterviewCount
	}
	if counts[s1.ID.Hex()] != 2 || counts[s2.ID.Hex()] != 0 {
		t.Errorf("interview counts: %v", counts)
	}
}

func TestRoutes_ForeignOrgIDForbidden(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	other := fx.CreateOrganization(ctx, "Beacon Labs")
	fx.CreateOrgUser(ctx, org.ID, "fb-res-1", "res@acme.test", models.RoleMember)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET",
		"/api/orgs/"+other.ID.Hex()+"/studies", testutil.OrgIdentity("fb-res-1")))
	rec.AssertStatus(t, http.StatusForbidden)

	// No membership at all is also forbidden.
	stranger := testutil.NewRecorder()
	router.ServeHTTP(stranger, testutil.NewAuthenticatedRequest("GET",
		"/api/orgs/"+org.ID.Hex()+"/studies", testutil.OrgIdentity("fb-nobody")))
	stranger.AssertStatus(t, http.StatusForbidden)

	// Interviewee tenant never reaches the org surface.
	wrongTenant := testutil.NewRecorder()
	router.ServeHTTP(wrongTenant, testutil.NewAuthenticatedRequest("GET",
		"/api/orgs/"+org.ID.Hex()+"/studies", testutil.IntervieweeIdentity("fb-p1")))
	wrongTenant.AssertStatus(t, http.StatusForbidden)
}

func TestHandleDelete_RequiresOwnerOrAdmin(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	fx.CreateOrgUser(ctx, org.ID, "fb-member", "m@acme.test", models.RoleMember)
	fx.CreateOrgUser(ctx, org.ID, "fb-admin", "a@acme.test", models.RoleAdmin)
	study := fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")
	target := "/api/orgs/" + org.ID.Hex() + "/studies/" + study.ID.Hex()

	member := testutil.NewRecorder()
	router.ServeHTTP(member, testutil.NewAuthenticatedRequest("DELETE", target, testutil.OrgIdentity("fb-member")))
	member.AssertStatus(t, http.StatusForbidden)

	admin := testutil.NewRecorder()
	router.ServeHTTP(admin, testutil.NewAuthenticatedRequest("DELETE", target, testutil.OrgIdentity("fb-admin")))
	admin.AssertStatus(t, http.StatusNoContent)
}

func TestGuide_PutSanitizesAndGets(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	fx.CreateOrgUser(ctx, org.ID, "fb-res-1", "res@acme.test", models.RoleMember)
	study := fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")
	target := "/api/orgs/" + org.ID.Hex() + "/studies/" + study.ID.Hex() + "/guide"

	put := testutil.NewRecorder()
	router.ServeHTTP(put, authedJSON("PUT", target,
		`{"content_md":"# Warmup\n<script>alert(1)</script>Ask about onboarding."}`,
		testutil.OrgIdentity("fb-res-1")))
	put.AssertStatus(t, http.StatusOK)
	if strings.Contains(put.Body.String(), "<script>") {
		t.Error("guide content kept embedded script")
	}
	put.AssertContains(t, "Ask about onboarding.")

	get := testutil.NewRecorder()
	router.ServeHTTP(get, testutil.NewAuthenticatedRequest("GET", target, testutil.OrgIdentity("fb-res-1")))
	get.AssertStatus(t, http.StatusOK)
	get.AssertContains(t, "Warmup")
}

func TestGuide_GetMissing(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	fx.CreateOrgUser(ctx, org.ID, "fb-res-1", "res@acme.test", models.RoleMember)
	study := fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET",
		"/api/orgs/"+org.ID.Hex()+"/studies/"+study.ID.Hex()+"/guide",
		testutil.OrgIdentity("fb-res-1")))
	rec.AssertStatus(t, http.StatusNotFound)
}
