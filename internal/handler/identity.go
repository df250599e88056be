package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Role is the caller's access level, taken from the X-User-Role header.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Identity is the resolved caller of a request.
type Identity struct {
	UserID string
	Role   Role
}

type identityKey struct{}

// IdentityFromContext returns the identity stored by the identity middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// identified requires X-User-Id and a known X-User-Role. A missing role is
// treated as a regular user.
func (h *Handler) identified(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID: r.Header.Get("X-User-Id"),
			Role:   Role(r.Header.Get("X-User-Role")),
		}
		if id.UserID == "" {
			writeError(w, http.StatusUnauthorized, "X-User-Id header is required")
			return
		}
		switch id.Role {
		case "":
			id.Role = RoleUser
		case RoleAdmin, RoleUser:
		default:
			writeError(w, http.StatusUnauthorized, "X-User-Role must be admin or user")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, id)
		ctx = zctx.With(ctx, zap.String("user_id", id.UserID))
		next(w, r.WithContext(ctx))
	})
}

// admin is identified plus a role check.
func (h *Handler) admin(next http.HandlerFunc) http.Handler {
	return h.identified(func(w http.ResponseWriter, r *http.Request) {
		if id, _ := IdentityFromContext(r.Context()); id.Role != RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	})
}
