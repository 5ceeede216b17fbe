package links_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/verity/internal/app/features/links"
	"github.com/dalemusser/verity/internal/app/system/indexes"
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

	h := links.NewHandler(db, "http://engine.test", "http://verity.test", 24*time.Hour, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/study", links.Routes(h))
	return r, testutil.NewFixtures(t, db), db
}

// redirectToken extracts the access token from the engine redirect.
func redirectToken(t *testing.T, rec *testutil.ResponseRecorder) string {
	t.Helper()
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect location: %v", err)
	}
	return loc.Query().Get("access_token")
}

func TestServeStart_UnknownSlug(t *testing.T) {
	router, _, _ := setup(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/study/no-such-study/start"))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "not_found")
}

func TestServeStart_StudyWithoutGuide(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	fx.CreateStudy(ctx, org.ID, "Checkout flow", "checkout-flow")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/study/checkout-flow/start?pid=prolific_abc123"))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeStart_RedirectsToEngine(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	study := fx.CreateStudy(ctx, org.ID, "Mobile banking", "mobile-banking-study")
	fx.CreateGuide(ctx, study.ID, "# Warmup")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/study/mobile-banking-study/start?pid=prolific_abc123"))
	rec.AssertStatus(t, http.StatusFound)

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad location: %v", err)
	}
	if loc.Host != "engine.test" {
		t.Errorf("redirect host: got %q", loc.Host)
	}
	if loc.Query().Get("access_token") == "" {
		t.Error("redirect missing access_token")
	}
	if loc.Query().Get("callback_base") != "http://verity.test" {
		t.Errorf("callback_base: got %q", loc.Query().Get("callback_base"))
	}
}

func TestServeStart_IdempotentReentrySameToken(t *testing.T) {
	router, fx, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	study := fx.CreateStudy(ctx, org.ID, "Mobile banking", "mobile-banking-study")
	fx.CreateGuide(ctx, study.ID, "# Warmup")

	first := testutil.NewRecorder()
	router.ServeHTTP(first, testutil.NewRequest("GET", "/study/mobile-banking-study/start?pid=prolific_abc123"))
	second := testutil.NewRecorder()
	router.ServeHTTP(second, testutil.NewRequest("GET", "/study/mobile-banking-study/start?pid=prolific_abc123"))

	t1, t2 := redirectToken(t, first), redirectToken(t, second)
	if t1 == "" || t1 != t2 {
		t.Errorf("expected same token on re-entry, got %q then %q", t1, t2)
	}

	n, err := db.Collection("interviews").CountDocuments(ctx, map[string]any{"study_id": study.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 interview row, got %d", n)
	}
}

func TestServeStart_NoPIDAlwaysCreates(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	study := fx.CreateStudy(ctx, org.ID, "Mobile banking", "mobile-banking-study")
	fx.CreateGuide(ctx, study.ID, "# Warmup")

	first := testutil.NewRecorder()
	router.ServeHTTP(first, testutil.NewRequest("GET", "/study/mobile-banking-study/start"))
	second := testutil.NewRecorder()
	router.ServeHTTP(second, testutil.NewRequest("GET", "/study/mobile-banking-study/start"))

	if redirectToken(t, first) == redirectToken(t, second) {
		t.Error("pid-less resolution must mint distinct sessions")
	}
}

func TestServeStart_CompletedRendersTerminalPage(t *testing.T) {
	router, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Research")
	study := fx.CreateStudy(ctx, org.ID, "Mobile banking", "mobile-banking-study")
	fx.CreateGuide(ctx, study.ID, "# Warmup")
	iv := fx.CreatePendingInterview(ctx, study.ID, "prolific_abc123")
	fx.CompleteInterview(ctx, iv.ID, "artifacts/t.txt")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/study/mobile-banking-study/start?pid=prolific_abc123"))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "already been completed")
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type: got %q", ct)
	}
}
