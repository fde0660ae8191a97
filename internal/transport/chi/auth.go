package chi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type tenantCtxKey struct{}

// TenantFromContext returns the tenant id resolved by the auth middleware,
// or "" when no tenant was resolved.
func TenantFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tenantCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// ContextWithTenant injects a tenant id; used by the middleware and tests.
func ContextWithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantCtxKey{}, tenantID)
}

// tenantClaims is the accepted token payload. Either organisation claim
// resolves the tenant; org_id wins when both are present.
type tenantClaims struct {
	OrgID          string `json:"org_id"`
	OrganizationID string `json:"organization_id"`
	jwt.RegisteredClaims
}

func (c *tenantClaims) tenantID() string {
	if c.OrgID != "" {
		return c.OrgID
	}
	return c.OrganizationID
}

// JWTAuthMiddleware returns a middleware that validates Bearer JWTs with the
// HMAC signing key and resolves the tenant from the organisation claim.
// If signingKey is empty, authentication is disabled and the tenant comes
// from the X-Organization-Code header (local development only).
func JWTAuthMiddleware(signingKey, issuer, audience string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Exempt paths
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if signingKey == "" {
				tenant := r.Header.Get("X-Organization-Code")
				next.ServeHTTP(w, r.WithContext(ContextWithTenant(r.Context(), tenant)))
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authorization header must use Bearer scheme")
				return
			}

			claims, err := parseToken(auth[len(bearerPrefix):], signingKey, issuer, audience)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			tenant := claims.tenantID()
			if tenant == "" {
				writeError(w, http.StatusUnauthorized, "tenant_required", "token carries no organization claim")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithTenant(r.Context(), tenant)))
		})
	}
}

func parseToken(tokenStr, signingKey, issuer, audience string) (*tenantClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := &tenantClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return []byte(signingKey), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
