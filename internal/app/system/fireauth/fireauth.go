// Package fireauth verifies bearer identity tokens and enforces the
// trust-domain boundary between the two authenticated tenants.
//
// Identity tokens are minted by Firebase Auth on the front end and carry
// our custom claims: tenant ("organization" or "interviewee") and an
// optional super_admin flag. The API verifies the token signature with
// the configured signing secret (the auth emulator stub and the edge
// proxy both sign with it) and injects the claims into the request
// context. The third trust domain — public token bearers — never passes
// through this package at all; routes for it carry no middleware.
//
// The two tenant guards are disjoint by construction: a route is mounted
// behind exactly one of RequireInterviewee / RequireOrganization, never
// both, and no handler switches on tenant at runtime.
package fireauth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/verity/internal/app/system/apierr"
)

// Tenants.
const (
	TenantOrganization = "organization"
	TenantInterviewee  = "interviewee"
)

// Claims is the verified identity of an authenticated caller.
type Claims struct {
	UID        string `json:"uid"`
	Tenant     string `json:"tenant"`
	Email      string `json:"email,omitempty"`
	SuperAdmin bool   `json:"super_admin,omitempty"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// Verifier checks bearer tokens and produces middleware.
type Verifier struct {
	secret []byte
	log    *zap.Logger
}

// NewVerifier constructs a Verifier with the given signing secret.
func NewVerifier(secret string, logger *zap.Logger) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("fireauth: signing secret must not be empty")
	}
	return &Verifier{secret: []byte(secret), log: logger}, nil
}

// Identity returns the verified claims from the request context.
func Identity(r *http.Request) (*Claims, bool) {
	c, ok := r.Context().Value(ctxKey{}).(*Claims)
	return c, ok
}

// WithTestIdentity injects claims directly into the request context,
// bypassing token verification. Test use only.
func WithTestIdentity(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, c))
}

func (v *Verifier) parse(tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{},
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UID == "" {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}

// Sign mints a token for the given claims. Used by tests and the local
// auth stub; production tokens come from Firebase.
func (v *Verifier) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}

// LoadIdentity attaches verified claims to the context when a valid
// Authorization header is present. Invalid tokens are treated the same
// as absent ones; the Require* guards decide whether that is fatal.
func (v *Verifier) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if strings.HasPrefix(h, "Bearer ") {
			raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if c, err := v.parse(raw); err == nil {
				r = WithTestIdentity(r, c)
			} else {
				v.log.Debug("bearer token rejected", zap.Error(err))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func requireTenant(tenant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := Identity(r)
			if !ok {
				apierr.Unauthorized(w, "authentication required")
				return
			}
			if c.Tenant != tenant {
				apierr.Forbidden(w, tenant+" access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireInterviewee admits only authenticated participants.
func RequireInterviewee(next http.Handler) http.Handler {
	return requireTenant(TenantInterviewee)(next)
}

// RequireOrganization admits only organization-tenant users. Membership
// in a concrete organization is resolved server-side afterwards (see the
// org features); this guard only establishes the tenant.
func RequireOrganization(next http.Handler) http.Handler {
	return requireTenant(TenantOrganization)(next)
}

// RequireSuperAdmin admits only super admins.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := Identity(r)
		if !ok {
			apierr.Unauthorized(w, "authentication required")
			return
		}
		if !c.SuperAdmin {
			apierr.Forbidden(w, "super admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
