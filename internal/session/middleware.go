package session

import (
	"context"
	"net/http"

	"github.com/abgdnv/gostorefront/internal/platform/web"
)

// HeaderName carries the session ID in both directions.
const HeaderName = "X-Session-Id"

type sessionKey struct{}

// WithSession stores the session in the context.
func WithSession(ctx context.Context, s *Session) context.Context {
	ctx = web.WithSessionID(ctx, s.ID)
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}

// Middleware opens the session named by the X-Session-Id header and echoes its ID back.
func Middleware(registry *Registry) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := registry.Open(r.Context(), r.Header.Get(HeaderName))
			w.Header().Set(HeaderName, s.ID)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
