package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/vikoba/internal/auth"
	"github.com/mmynk/vikoba/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// MemberIDKey is the context key for storing the actor's member ID.
	MemberIDKey contextKey = "member_id"
	// RoleKey is the context key for storing the actor's role.
	RoleKey contextKey = "role"
)

// GetMemberID extracts the actor's member ID from the context.
// Returns empty string if not found.
func GetMemberID(ctx context.Context) string {
	memberID, _ := ctx.Value(MemberIDKey).(string)
	return memberID
}

// GetRole extracts the actor's role from the context.
// Returns RoleMember if no role was established.
func GetRole(ctx context.Context) models.Role {
	role, ok := ctx.Value(RoleKey).(models.Role)
	if !ok {
		return models.RoleMember
	}
	return role
}

// WithActor returns a context carrying the actor's identity.
func WithActor(ctx context.Context, memberID string, role models.Role) context.Context {
	ctx = context.WithValue(ctx, MemberIDKey, memberID)
	return context.WithValue(ctx, RoleKey, role)
}

// RoleInterceptor returns a middleware that derives the actor's role from a
// bearer token. Requests without an Authorization header act as members;
// a malformed or invalid token is rejected.
func RoleInterceptor(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return next(WithActor(ctx, "", models.RoleMember), req)
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithActor(ctx, claims.MemberID, claims.Role), req)
		}
	}
}
