package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/wallet-settlement/pkg/app/errors"
	apphttp "github.com/chainsafe/wallet-settlement/pkg/app/http"
)

var (
	errMissingBearer = errors.New("missing bearer token")
	errMissingRole   = errors.New("caller lacks required role")
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// Middleware requires a valid `Authorization: Bearer <jwt>` header and stores
// the caller in the request context.
func Middleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apphttp.DefaultErrorHandler(w, r, logger, apperrors.UnAuthorizedError(errMissingBearer, "missing bearer token"))
				return
			}

			claims, err := v.ValidateToken(token)
			if err != nil {
				logger.Debug("rejected bearer token", zap.Error(err))
				apphttp.DefaultErrorHandler(w, r, logger, apperrors.UnAuthorizedError(err, "invalid or expired token"))
				return
			}

			info, err := claims.AuthInfo()
			if err != nil {
				apphttp.DefaultErrorHandler(w, r, logger, apperrors.UnAuthorizedError(err, "invalid token subject"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuthInfo(r.Context(), info)))
		})
	}
}

// RequireRole rejects callers without role. It must run after Middleware.
func RequireRole(role string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, ok := AuthInfoFromContext(r.Context())
			if !ok {
				apphttp.DefaultErrorHandler(w, r, logger, apperrors.UnAuthorizedError(errMissingBearer, "authentication required"))
				return
			}
			if info.Role != role {
				apphttp.DefaultErrorHandler(w, r, logger, apperrors.ForbiddenError(errMissingRole, "insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
