package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anuragpatel/minisocial-service/internal/utils/token"
)

// CookieName is the session cookie carrying the identity token.
const CookieName = "token"

// LoginPath is where unauthenticated requests are redirected.
const LoginPath = "/login"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the verified token payload attached to the request context.
type Identity struct {
	Email  string
	UserID string
}

// Auth gates protected routes on the session cookie. A missing, empty or
// invalid token redirects to the login page and the downstream handler never
// runs. On success the verified identity is attached to the request context.
// The middleware is stateless and never touches stored data.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			claims, err := token.Verify(cookie.Value, jwtSecret)
			if err != nil {
				// Signature and parse failures are rejected identically but
				// logged apart.
				if errors.Is(err, token.ErrInvalidSignature) {
					slog.Warn("Rejected token with invalid signature", slog.String("path", r.URL.Path))
				} else {
					slog.Warn("Rejected malformed token", slog.String("path", r.URL.Path))
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{
				Email:  claims.Email,
				UserID: claims.UserID,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
