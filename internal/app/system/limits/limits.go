// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxGuideContentSize is the maximum size for an interview guide PUT.
	MaxGuideContentSize = 1 << 20 // 1 MB

	// MaxJSONBodySize is the maximum size for ordinary JSON API bodies
	// (study CRUD, completion callbacks, organization creation).
	MaxJSONBodySize = 64 << 10 // 64 KB
)
