package middlewarex

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"admissions/internal/core"
	"admissions/internal/domain/user"
	"admissions/internal/services/auth"

	"github.com/rs/zerolog/log"
)

// Authenticator turns a raw bearer token into claims
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*auth.Claims, error)
}

// Authenticate requires a valid Bearer token and stores its claims in the
// request context.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				deny(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if raw == "" {
				deny(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}

			claims, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				if core.Is(err, core.KindInternal) {
					log.Error().Err(err).Msg("token check failed")
					deny(w, http.StatusInternalServerError, core.MessageOf(err))
					return
				}
				deny(w, http.StatusUnauthorized, core.MessageOf(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := Claims(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			if claims.Role != role {
				if role == user.RoleAdmin {
					deny(w, http.StatusForbidden, "Admin access only!")
					return
				}
				deny(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
