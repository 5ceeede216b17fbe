// Package token generates the opaque access tokens that gate the public
// interview endpoints.
//
// Tokens are random UUIDv4 strings (122 bits of entropy). They carry no
// embedded claims: validation is a database lookup against the interviews
// collection, which keeps revocation trivial (expire the row) and avoids
// a second source of truth. Callers must treat tokens as opaque and must
// never log them.
package token

import (
	"github.com/google/uuid"
)

// New returns a fresh single-use access token.
func New() string {
	return uuid.NewString()
}

// Plausible reports whether s is even shaped like a token we issued.
// It exists so handlers can reject junk before touching the database;
// a true result says nothing about validity.
func Plausible(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
