package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/joralabs/jora-api/internal/domain/user"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Role   user.Role
}

type identityKey struct{}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(r.Context(), w, "unauthorized", "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := h.tokens.Validate(raw)
		if err != nil {
			writeError(r.Context(), w, "unauthorized", "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, Identity{
			UserID: claims.Subject,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects authenticated callers that do not hold the admin role.
// It must be mounted after RequireAuth.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(r.Context(), w, "unauthorized", "authentication required", http.StatusUnauthorized)
			return
		}
		if id.Role != user.RoleAdmin {
			writeError(r.Context(), w, "forbidden", "admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
