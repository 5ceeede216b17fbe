package bootstrap

import (
	"context"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

func TestBuildStorage_Local(t *testing.T) {
	cfg := validAppConfig()
	cfg.StorageLocalPath = t.TempDir()
	cfg.StorageLocalURL = "/files/artifacts"

	store, err := buildStorage(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildStorage failed: %v", err)
	}
	if _, ok := store.(*storage.Local); !ok {
		t.Errorf("expected *storage.Local, got %T", store)
	}
}

func TestBuildStorage_UnknownType(t *testing.T) {
	cfg := validAppConfig()
	cfg.StorageType = "gcs"

	if _, err := buildStorage(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown storage type")
	}
}
