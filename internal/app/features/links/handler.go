// internal/app/features/links/handler.go
package links

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for public link resolution.
type Handler struct {
	DB *mongo.Database

	// EngineBaseURL is the external interview engine's entry point; the
	// resolver redirects participants there with their access token.
	EngineBaseURL string

	// CallbackBaseURL is this service's public base URL, handed to the
	// engine so it can reach the handoff and completion endpoints.
	CallbackBaseURL string

	// TokenTTL bounds how long a freshly issued access token stays valid.
	TokenTTL time.Duration

	Log *zap.Logger
}

// NewHandler constructs a links handler bound to a DB and logger.
func NewHandler(db *mongo.Database, engineBaseURL, callbackBaseURL string, tokenTTL time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		DB:              db,
		EngineBaseURL:   engineBaseURL,
		CallbackBaseURL: callbackBaseURL,
		TokenTTL:        tokenTTL,
		Log:             logger,
	}
}
