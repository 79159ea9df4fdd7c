package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskflow/taskflow-api/pkg/respond"
)

type contextKey struct{}

var ownerKey contextKey

// Middleware validates the bearer token and puts the owner id into the
// request context.
func Middleware(jwt *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respond.Error(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := jwt.ValidateAccess(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerID extracts the authenticated owner from the context; empty when
// the request never passed the middleware.
func OwnerID(ctx context.Context) string {
	id, _ := ctx.Value(ownerKey).(string)
	return id
}

// WithOwner returns a context carrying the owner id, used by tests.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}
