package auth

import (
	"context"

	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/google/uuid"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   domain.UserRole
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// IsAdmin reports whether the authenticated user has the admin role.
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}
