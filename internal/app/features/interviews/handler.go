// internal/app/features/interviews/handler.go
package interviews

import (
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the researcher-facing interview surface: generating bare
// links, listing sessions, and proxying artifact downloads.
type Handler struct {
	DB      *mongo.Database
	Storage storage.Store

	EngineBaseURL   string
	CallbackBaseURL string
	TokenTTL        time.Duration

	Log *zap.Logger
}

// NewHandler constructs an interviews handler.
func NewHandler(db *mongo.Database, store storage.Store, engineBaseURL, callbackBaseURL string, tokenTTL time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		DB:              db,
		Storage:         store,
		EngineBaseURL:   engineBaseURL,
		CallbackBaseURL: callbackBaseURL,
		TokenTTL:        tokenTTL,
		Log:             logger,
	}
}
