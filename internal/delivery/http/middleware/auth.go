package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"frameit/internal/delivery/http/helpers"
	"frameit/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// SetIdentity returns a context with the verified identity set. Used by auth middleware.
func SetIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity from the context, if present.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*domain.Identity)
	return identity, ok
}

// RequireAuth returns a wrapper that validates the Bearer token, upserts the
// local user record for the asserted identity, and sets the identity in the
// request context. If the token is missing or invalid, it responds with 401
// and does not call next.
func RequireAuth(verifier domain.TokenVerifier, users domain.UserService, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, errMsg := identityFromRequest(verifier, r)
			if identity == nil {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, errMsg)
				return
			}
			if _, err := users.EnsureUser(r.Context(), *identity); err != nil {
				logger.ErrorContext(r.Context(), "ensure user failed", "user_id", identity.ID, "err", err)
				helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to load user")
				return
			}
			r = r.WithContext(SetIdentity(r.Context(), identity))
			next(w, r)
		}
	}
}

// OptionalAuth returns a wrapper that sets the identity in the request
// context when a valid Bearer token is present and otherwise lets the
// request through as a guest. An invalid token is treated as absent.
func OptionalAuth(verifier domain.TokenVerifier, users domain.UserService, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, _ := identityFromRequest(verifier, r)
			if identity != nil {
				if _, err := users.EnsureUser(r.Context(), *identity); err != nil {
					logger.WarnContext(r.Context(), "ensure user failed, continuing as guest",
						"user_id", identity.ID, "err", err)
				} else {
					r = r.WithContext(SetIdentity(r.Context(), identity))
				}
			}
			next(w, r)
		}
	}
}

func identityFromRequest(verifier domain.TokenVerifier, r *http.Request) (*domain.Identity, string) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, "missing authorization header"
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return nil, "invalid authorization format"
	}
	token := strings.TrimSpace(auth[len(prefix):])
	if token == "" {
		return nil, "missing token"
	}
	identity, err := verifier.Verify(token)
	if err != nil {
		return nil, "invalid or expired token"
	}
	return identity, ""
}
