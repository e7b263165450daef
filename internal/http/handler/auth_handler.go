package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/auth"
	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/arkidots/pipeline-api/internal/store"
)

// AuthHandler handles login and session introspection
type AuthHandler struct {
	identity *store.IdentityStore
	issuer   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(identity *store.IdentityStore, issuer *auth.TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		issuer:   issuer,
		logger:   logger,
	}
}

// Login godoc
// @Summary Authenticate with email and password
// @Description Verifies credentials and returns a bearer token plus the user profile
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.identity.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrAuthenticationFailed) {
			// Same response for unknown email and wrong password
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	h.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	respondJSON(w, http.StatusOK, domain.LoginResponse{
		Token: token,
		User:  user,
	})
}

// Me godoc
// @Summary Get the authenticated user
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.identity.GetUser(userCtx.UserID)
	if err != nil {
		// Token outlived the account
		respondWithError(w, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Logout godoc
// @Summary Log out
// @Description Tokens are stateless, so logout is a client-side discard
// @Tags Auth
// @Success 204
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		h.logger.Info("user logged out", zap.String("user_id", userCtx.UserID.String()))
	}
	w.WriteHeader(http.StatusNoContent)
}
