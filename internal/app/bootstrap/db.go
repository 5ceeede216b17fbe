// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/dalemusser/verity/internal/app/system/indexes"
	"github.com/dalemusser/verity/internal/app/system/validators"
)

// EnsureSchema reconciles collections, JSON-Schema validators, and the
// unique indexes every lifecycle invariant depends on (token uniqueness,
// one interview per (study, pid), one guide per study). Runs before the
// HTTP handler is built so a failed index leaves the service down rather
// than racy.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.VerityMongoDatabase); err != nil {
		logger.Error("collection validator reconciliation failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.VerityMongoDatabase); err != nil {
		logger.Error("index reconciliation failed", zap.Error(err))
		return err
	}
	logger.Info("collections and indexes ensured")
	return nil
}
