package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shingunhoon/Clix/pkg/identity"
	"github.com/Shingunhoon/Clix/pkg/limiter"
	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

func signToken(t *testing.T, ks identity.KeySet, email, name string) string {
	t.Helper()
	token, err := ks.Sign(context.Background(), &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name: name,
	})
	require.NoError(t, err)
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_PublicPathsPassWithoutToken(t *testing.T) {
	mw := NewMiddleware(nil)
	h := mw(okHandler())

	for _, path := range []string{"/healthz", "/api/years", "/api/feed", "/api/search", "/api/hall-of-fame"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	// Post detail reads are public; writes are not.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/posts/abc", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_MissingAndMalformedHeader(t *testing.T) {
	ks, err := identity.NewInMemoryKeySet()
	require.NoError(t, err)
	mw := NewMiddleware(NewJWTValidator(ks))
	h := mw(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_ValidTokenInjectsIdentity(t *testing.T) {
	ks, err := identity.NewInMemoryKeySet()
	require.NoError(t, err)
	mw := NewMiddleware(NewJWTValidator(ks))

	var got *Identity
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, ks, "member@example.com", "Member"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "member@example.com", got.Email)
	assert.Equal(t, "Member", got.Name)
}

func TestMiddleware_RotatedKeyStillVerifies(t *testing.T) {
	ks, err := identity.NewInMemoryKeySet()
	require.NoError(t, err)
	token := signToken(t, ks, "member@example.com", "Member")
	require.NoError(t, ks.Rotate())

	mw := NewMiddleware(NewJWTValidator(ks))
	h := mw(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireMember_UnregisteredRedirectsToSignup(t *testing.T) {
	s := store.NewMemoryStore()
	h := RequireMember(s.Users())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{Email: "ghost@example.com", Name: "Ghost"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, SignupPath, rec.Header().Get("Location"))
}

func TestRequireMember_ResolvesRoleFromRecord(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Users().Put(ctx, &model.User{
		Email: "member@example.com", Name: "Member", Role: model.RoleSubAdmin,
	}))

	var got *Principal
	h := RequireMember(s.Users())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req = req.WithContext(WithIdentity(req.Context(), &Identity{Email: "member@example.com", Name: "Member"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, model.RoleSubAdmin, got.Role)
	assert.True(t, got.Elevated())
}

func TestRequireElevated(t *testing.T) {
	tests := []struct {
		name       string
		principal  *Principal
		wantStatus int
	}{
		{"admin passes", &Principal{Email: "a@example.com", Role: model.RoleAdmin}, http.StatusOK},
		{"subAdmin passes", &Principal{Email: "s@example.com", Role: model.RoleSubAdmin}, http.StatusOK},
		{"plain user sent home", &Principal{Email: "u@example.com", Role: model.RoleUser}, http.StatusSeeOther},
		{"no principal sent home", nil, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireElevated(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusSeeOther {
				// The denial navigates home and never names the admin surface.
				assert.Equal(t, HomePath, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	mw := RateLimitMiddleware(limiter.NewLocalStore(), limiter.Policy{RPM: 60, Burst: 2})
	h := mw(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRequestIDMiddleware(t *testing.T) {
	var got string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/feed", nil))
	assert.NotEmpty(t, got)
	assert.Equal(t, got, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
