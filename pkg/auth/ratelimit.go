package auth

import (
	"net/http"

	"github.com/Shingunhoon/Clix/pkg/api"
	"github.com/Shingunhoon/Clix/pkg/limiter"
)

// RateLimitMiddleware enforces per-actor rate limiting at the HTTP layer.
// It keys on the session identity when present, falling back to remote IP.
// On rate limit exceeded, it returns 429 with a Retry-After header.
func RateLimitMiddleware(store limiter.Store, policy limiter.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Fail open if no store configured (dev mode)
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			actorID := r.RemoteAddr
			if id, err := GetIdentity(r.Context()); err == nil {
				actorID = id.Email
			}

			allowed, err := store.Allow(r.Context(), actorID, policy, 1)
			if err != nil {
				// Fail open on limiter errors to avoid blocking all traffic
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				retryAfter := 60 / policy.RPM
				if retryAfter < 1 {
					retryAfter = 1
				}
				api.WriteTooManyRequests(w, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
