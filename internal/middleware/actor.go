package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/qasr/qasr-api/internal/pkg/response"
)

// Actor roles recognized by the booking workflow. Authentication itself happens at the
// API gateway in front of this service; the gateway forwards the verified identity in
// the X-Actor-ID / X-Actor-Role headers.
const (
	RoleCustomer      = "customer"
	RoleHallManager   = "hall_manager"
	RoleVendorManager = "vendor_manager"
	RoleAdmin         = "admin"
)

type contextKey string

const (
	actorIDKey   contextKey = "actor_id"
	actorRoleKey contextKey = "actor_role"
)

// Actor extracts the acting user from the trusted gateway headers and rejects
// requests without a valid identity.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, err := uuid.Parse(r.Header.Get("X-Actor-ID"))
		if err != nil {
			response.Unauthorized(w, "missing or invalid actor identity")
			return
		}

		role := r.Header.Get("X-Actor-Role")
		switch role {
		case RoleCustomer, RoleHallManager, RoleVendorManager, RoleAdmin:
		default:
			response.Unauthorized(w, "missing or invalid actor role")
			return
		}

		ctx := context.WithValue(r.Context(), actorIDKey, actorID)
		ctx = context.WithValue(ctx, actorRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActorID returns the acting user id from context, or uuid.Nil
func GetActorID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(actorIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetActorRole returns the acting user role from context, or ""
func GetActorRole(ctx context.Context) string {
	if role, ok := ctx.Value(actorRoleKey).(string); ok {
		return role
	}
	return ""
}
