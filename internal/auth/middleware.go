package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/stationops/forecourt/internal/models"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing session claims in context
	SessionContextKey contextKey = "session"
)

// RequireAuth validates the bearer session token and injects its claims
// into the request context.
func RequireAuth(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireFreshPassword blocks sessions carrying the forced-change flag.
// Applied to every protected route except the change-password endpoint, it
// gates all other functionality until the password is updated.
func RequireFreshPassword() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := SessionFromContext(r.Context())
			if !ok {
				pkghttp.WriteUnauthorized(w, "no session")
				return
			}

			if claims.MustChangePassword {
				pkghttp.WriteError(w, http.StatusForbidden, "password_change_required",
					"password has expired and must be changed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole restricts a route group to one role.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := SessionFromContext(r.Context())
			if !ok {
				pkghttp.WriteUnauthorized(w, "no session")
				return
			}

			if claims.Role != role {
				pkghttp.WriteForbidden(w, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext extracts session claims stored by RequireAuth.
func SessionFromContext(ctx context.Context) (*models.SessionClaims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*models.SessionClaims)
	return claims, ok
}
