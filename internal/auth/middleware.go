package auth

import (
	"context"
	"net/http"
)

// contextKey is unexported so only this package can read or write the
// identity stored in a request context.
type contextKey string

const identityKey contextKey = "identity"

// SessionCookieName is the HTTP cookie carrying the session token.
const SessionCookieName = "token"

// RequireAuth enforces authentication on protected routes. It reads the
// session token from the HttpOnly cookie, validates it, and stores the
// identity in the request context. Missing or invalid tokens get 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces an administrator session. Chain after RequireAuth is
// unnecessary — it validates the token itself. Non-admin identities get 403.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := extractIdentity(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}
			if !id.Admin {
				http.Error(w, `{"error":"forbidden","message":"admin privileges required"}`, http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the identity when a valid token is present but never
// blocks the request. Anonymous requests pass through untouched; repository
// creation uses this to fall back to the anonymous owner.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := extractIdentity(r, tokens); err == nil && id.UserID != "" {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext retrieves the authenticated identity from the request
// context. ok is false for anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Identity{}, err
	}
	return tokens.Validate(cookie.Value)
}
