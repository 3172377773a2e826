package auth

import (
	"errors"
	"net/http"

	"github.com/Shingunhoon/Clix/pkg/api"
	"github.com/Shingunhoon/Clix/pkg/store"
)

// Paths clients are steered to when a gate rejects them. Denials
// navigate away rather than announce what was protected, so both gates
// answer 303 instead of 403.
const (
	SignupPath = "/signup"
	HomePath   = "/"
)

// RequireMember resolves the token identity against the users
// collection and injects the resulting Principal. A verified identity
// with no user record is not a member: the session is refused and the
// client is sent to signup.
func RequireMember(users store.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := GetIdentity(r.Context())
			if err != nil {
				api.WriteUnauthorized(w, "No session")
				return
			}

			u, err := users.Get(r.Context(), id.Email)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					http.Redirect(w, r, SignupPath, http.StatusSeeOther)
					return
				}
				api.WriteInternal(w, err)
				return
			}

			ctx := WithPrincipal(r.Context(), &Principal{
				Email: u.Email,
				Name:  u.Name,
				Role:  u.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireElevated admits only admin and subAdmin principals. Everyone
// else is sent home; the response carries no hint that an admin surface
// exists here.
func RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := GetPrincipal(r.Context())
		if err != nil || !p.Elevated() {
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
