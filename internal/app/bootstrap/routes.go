// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	claimsfeature "github.com/dalemusser/verity/internal/app/features/claims"
	healthfeature "github.com/dalemusser/verity/internal/app/features/health"
	interviewsfeature "github.com/dalemusser/verity/internal/app/features/interviews"
	linksfeature "github.com/dalemusser/verity/internal/app/features/links"
	organizationsfeature "github.com/dalemusser/verity/internal/app/features/organizations"
	sessionfeature "github.com/dalemusser/verity/internal/app/features/session"
	studiesfeature "github.com/dalemusser/verity/internal/app/features/studies"
	"github.com/dalemusser/verity/internal/app/system/fireauth"
	"github.com/dalemusser/verity/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. The route tree mirrors the three trust
// domains: public link/token routes carry no middleware, participant
// routes require the interviewee tenant, and the /api/orgs subtree
// requires the organization tenant with server-side membership checks
// inside the handlers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.VerityMongoDatabase

	verifier, err := fireauth.NewVerifier(appCfg.AuthSecret, logger)
	if err != nil {
		logger.Error("auth verifier init failed", zap.Error(err))
		return nil, err
	}

	artifactStorage, err := buildStorage(context.Background(), appCfg, logger)
	if err != nil {
		logger.Error("artifact storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global identity middleware: attaches verified claims when a bearer
	// token is present. The Require* guards on individual subtrees decide
	// whether identity is mandatory.
	r.Use(verifier.LoadIdentity)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.VerityMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Public link and token subtrees: no authentication, so per-IP rate
	// limiting is the only brake on token guessing.
	publicLimiter := ratelimit.New(120, time.Minute)

	linksHandler := linksfeature.NewHandler(db, appCfg.EngineBaseURL, appCfg.BaseURL, appCfg.TokenTTL, logger)
	sessionHandler := sessionfeature.NewHandler(db, logger)
	claimsHandler := claimsfeature.NewHandler(db, logger)
	r.Group(func(r chi.Router) {
		r.Use(publicLimiter.Middleware)
		r.Mount("/study", linksfeature.Routes(linksHandler))
		r.Mount("/interview", sessionfeature.Routes(sessionHandler, claimsHandler.ServeClaim))
	})

	// Participant dashboard
	r.Mount("/api/participant", claimsfeature.Routes(claimsHandler))

	// Organization trust domain
	studiesHandler := studiesfeature.NewHandler(db, logger)
	interviewsHandler := interviewsfeature.NewHandler(db, artifactStorage,
		appCfg.EngineBaseURL, appCfg.BaseURL, appCfg.TokenTTL, logger)
	orgHandler := organizationsfeature.NewHandler(db, logger)
	r.Mount("/api/orgs", organizationsfeature.Routes(orgHandler,
		studiesfeature.Routes(studiesHandler, interviewsHandler),
		interviewsfeature.ArtifactRoutes(interviewsHandler)))

	return r, nil
}
