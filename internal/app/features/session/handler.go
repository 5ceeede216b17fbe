// internal/app/features/session/handler.go
package session

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the engine-facing session contract: the handoff fetch
// and the completion callback. Both sides authenticate with the access
// token alone, so the token is the credential and is never logged or
// echoed in a response body.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a session handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}
