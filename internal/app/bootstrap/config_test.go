package bootstrap

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "verity",
		EngineBaseURL: "http://localhost:4000",
		BaseURL:       "http://localhost:8080",
		TokenTTL:      24 * time.Hour,
		AuthSecret:    "test-secret",
		StorageType:   "local",
	}
}

func TestValidateConfig(t *testing.T) {
	nop := zap.NewNop()

	if err := ValidateConfig(nil, validAppConfig(), nop); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{
			name:    "bad mongo uri",
			mutate:  func(c *AppConfig) { c.MongoURI = "localhost:27017" },
			wantErr: "MongoDB URI",
		},
		{
			name:    "relative engine url",
			mutate:  func(c *AppConfig) { c.EngineBaseURL = "/engine" },
			wantErr: "engine_base_url",
		},
		{
			name:    "relative base url",
			mutate:  func(c *AppConfig) { c.BaseURL = "verity.example.com" },
			wantErr: "base_url",
		},
		{
			name:    "zero token ttl",
			mutate:  func(c *AppConfig) { c.TokenTTL = 0 },
			wantErr: "token_ttl",
		},
		{
			name:    "empty auth secret",
			mutate:  func(c *AppConfig) { c.AuthSecret = "" },
			wantErr: "auth_secret",
		},
		{
			name:    "unknown storage type",
			mutate:  func(c *AppConfig) { c.StorageType = "gcs" },
			wantErr: "storage_type",
		},
		{
			name: "s3 without bucket",
			mutate: func(c *AppConfig) {
				c.StorageType = "s3"
				c.StorageS3Region = "us-east-1"
			},
			wantErr: "storage_s3",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validAppConfig()
			tc.mutate(&cfg)
			err := ValidateConfig(nil, cfg, nop)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
