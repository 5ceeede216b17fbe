// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to this service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// External interview engine
	EngineBaseURL string // entry point participants are redirected to

	// BaseURL is this service's public base URL, handed to the engine as
	// the callback base for the handoff and completion endpoints.
	BaseURL string

	// TokenTTL bounds the validity of issued access tokens.
	TokenTTL time.Duration

	// AuthSecret signs/verifies bearer identity tokens for the two
	// authenticated tenants.
	AuthSecret string

	// Artifact storage configuration
	StorageType      string // "local" or "s3"
	StorageLocalPath string // local storage root (e.g., "./uploads/artifacts")
	StorageLocalURL  string // URL prefix for serving local files

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageCFURL       string
	StorageCFKeyPairID string
	StorageCFKeyPath   string
}
