package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "eventmenu/internal/delivery/http/helpers"
	"eventmenu/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// AccessTokenParam carries the bearer token for clients that cannot set headers (EventSource).
const AccessTokenParam = "access_token"

// SetIdentity returns a context with the identity set. Used by auth middleware.
func SetIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity from the context, if present.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

// OrganizerIDFromContext returns the user id when the context carries a non-anonymous identity.
func OrganizerIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok || !id.IsOrganizer() {
		return "", false
	}
	return id.UserID, true
}

// bearerToken extracts the token from the Authorization header, falling back to the
// access_token query parameter. The message is empty when a token was found.
func bearerToken(r *http.Request) (token, message string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		if q := strings.TrimSpace(r.URL.Query().Get(AccessTokenParam)); q != "" {
			return q, ""
		}
		return "", "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", "invalid authorization format"
	}
	token = strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the identity in the request context.
// Both organizer and anonymous guest tokens are accepted.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, msg := bearerToken(r)
			if msg != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msg)
				return
			}
			identity, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetIdentity(r.Context(), identity)))
		}
	}
}

// RequireOrganizer is RequireAuth restricted to organizer accounts. Anonymous guest tokens get 403.
func RequireOrganizer(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	requireAuth := RequireAuth(verifier, logger)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := OrganizerIDFromContext(r.Context()); !ok {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "organizer account required")
				return
			}
			next(w, r)
		})
	}
}

// OptionalAuth sets the identity when a valid token is present and otherwise calls next
// without one. An invalid or expired token is treated as signed out.
func OptionalAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, msg := bearerToken(r)
			if msg == "" {
				identity, err := verifier.Verify(token)
				if err == nil {
					r = r.WithContext(SetIdentity(r.Context(), identity))
				} else {
					logger.DebugContext(r.Context(), "ignoring invalid token", "path", r.URL.Path, "err", err)
				}
			}
			next(w, r)
		}
	}
}
