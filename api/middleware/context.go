package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

type identityKey struct{}

// Identity is the authenticated caller. Guests have none.
type Identity struct {
	UserID string
	Role   enums.Role
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, userID string, role enums.Role) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, Identity{UserID: userID, Role: role})
}

// IdentityFromContext reports the caller and whether one authenticated.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

func RoleFromContext(ctx context.Context) enums.Role {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// CustomerIDFromContext returns the caller's user id, or nil for guests.
func CustomerIDFromContext(ctx context.Context) *uuid.UUID {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

// ActorFromContext describes the caller for outbox envelopes.
func ActorFromContext(ctx context.Context) *outbox.ActorRef {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.Role == "" {
		return &outbox.ActorRef{Role: "guest"}
	}
	return &outbox.ActorRef{UserID: CustomerIDFromContext(ctx), Role: id.Role.String()}
}
