// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address so lookups and stored
// values compare consistently.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
