package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
)

// RoleAdmin may review withdrawals parked for manual review
const RoleAdmin = "admin"

type contextKey string

// ContextKeyAuthInfo is the context key for the authenticated caller
const ContextKeyAuthInfo contextKey = "auth_info"

// AuthInfo contains all authentication information for a request
type AuthInfo struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
}

// IsAdmin reports whether the caller holds the admin role
func (a *AuthInfo) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// WithAuthInfo adds all authentication info to the context
func WithAuthInfo(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, ContextKeyAuthInfo, info)
}

// AuthInfoFromContext retrieves the authenticated caller from the context
func AuthInfoFromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(ContextKeyAuthInfo).(*AuthInfo)
	return info, ok && info != nil
}

// RequireAuthInfo returns the authenticated caller or an UnAuthorizedError
func RequireAuthInfo(ctx context.Context) (*AuthInfo, error) {
	info, ok := AuthInfoFromContext(ctx)
	if !ok {
		return nil, apperrors.UnAuthorizedError(errors.New("no caller in context"), "authentication required")
	}
	return info, nil
}
