package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arkidots/pipeline-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware authenticates requests using Bearer session tokens
type Middleware struct {
	issuer *TokenIssuer
	logger *zap.Logger
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(issuer *TokenIssuer, logger *zap.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: logger}
}

// Authenticate validates the Authorization header and attaches the user
// context to the request.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respondAuthError(w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			respondAuthError(w, http.StatusUnauthorized, "Authorization header must be a Bearer token")
			return
		}

		userCtx, err := m.issuer.Validate(parts[1])
		if err != nil {
			m.logger.Debug("token validation failed", zap.Error(err))
			if err == ErrExpiredToken {
				respondAuthError(w, http.StatusUnauthorized, "Token has expired")
				return
			}
			respondAuthError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// Must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userCtx, ok := FromContext(r.Context())
		if !ok {
			respondAuthError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !userCtx.IsAdmin() {
			respondAuthError(w, http.StatusForbidden, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	errType := domain.ErrorTypeUnauthorized
	if status == http.StatusForbidden {
		errType = domain.ErrorTypeForbidden
	}
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
