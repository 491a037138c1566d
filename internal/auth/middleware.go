package auth

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/abgdnv/gostorefront/internal/platform/web"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// Authenticate puts the user of a valid bearer token in the request context. Requests without
// a token pass through anonymously; requests with an invalid token are rejected.
func Authenticate(tokens *Tokens, logger *slog.Logger) func(next http.Handler) http.Handler {
	logger = logger.With("component", "auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			u, err := tokens.Verify(r.Context(), raw)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected bearer token", "error", err)
				web.RespondError(w, logger, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireRole admits only authenticated users holding one of the roles.
func RequireRole(logger *slog.Logger, roles ...Role) func(next http.Handler) http.Handler {
	logger = logger.With("component", "auth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				web.RespondError(w, logger, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !slices.Contains(roles, u.Role) {
				logger.WarnContext(r.Context(), "Access denied", "user_id", u.ID, "role", u.Role)
				web.RespondError(w, logger, http.StatusForbidden, "You don't have permission to access this page.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
