package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Shingunhoon/Clix/pkg/api"
	"github.com/Shingunhoon/Clix/pkg/identity"
)

// JWTValidator validates session tokens and extracts claims.
type JWTValidator struct {
	// KeySet provides the keys for validation.
	KeySet identity.KeySet
}

// SessionClaims are the claims a portal session token carries. Subject
// is the authenticated email.
type SessionClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// NewJWTValidator creates a validator with the given KeySet.
func NewJWTValidator(ks identity.KeySet) *JWTValidator {
	if ks == nil {
		return nil
	}
	return &JWTValidator{KeySet: ks}
}

// Validate parses and validates a session token string.
func (v *JWTValidator) Validate(tokenStr string) (*SessionClaims, error) {
	if v.KeySet == nil {
		return nil, fmt.Errorf("validator uninitialized")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, v.KeySet.KeyFunc())
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// isPublicRequest reports whether the request may proceed without a
// session. The feed and everything it aggregates is readable signed out.
func isPublicRequest(r *http.Request) bool {
	path := r.URL.Path
	switch path {
	case "/healthz", "/api/years", "/api/feed", "/api/search", "/api/hall-of-fame":
		return true
	}
	if r.Method == http.MethodGet && strings.HasPrefix(path, "/api/posts/") {
		return true
	}
	return false
}

// NewMiddleware creates session auth middleware. A valid token injects
// an Identity; membership resolution happens downstream. If validator
// is nil, all non-public requests are rejected (fail closed).
func NewMiddleware(validator *JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicRequest(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.WriteUnauthorized(w, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				api.WriteUnauthorized(w, "Invalid Authorization header format (expected 'Bearer <token>')")
				return
			}
			tokenStr := parts[1]

			if validator == nil {
				api.WriteUnauthorized(w, "Authentication not configured")
				return
			}

			claims, err := validator.Validate(tokenStr)
			if err != nil {
				api.WriteUnauthorized(w, "Invalid or expired token")
				return
			}
			if claims.Subject == "" {
				api.WriteUnauthorized(w, "Token subject is required")
				return
			}

			ctx := WithIdentity(r.Context(), &Identity{
				Email: claims.Subject,
				Name:  claims.Name,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
