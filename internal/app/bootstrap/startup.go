// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	logger.Info("verity starting",
		zap.String("engine_base_url", appCfg.EngineBaseURL),
		zap.String("base_url", appCfg.BaseURL),
		zap.Duration("token_ttl", appCfg.TokenTTL),
		zap.String("storage_type", appCfg.StorageType))
	return nil
}
