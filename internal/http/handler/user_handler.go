package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/auth"
	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/arkidots/pipeline-api/internal/store"
)

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	identity *store.IdentityStore
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(identity *store.IdentityStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		identity: identity,
		logger:   logger,
	}
}

// ListUsers godoc
// @Summary List user accounts
// @Tags Users
// @Produce json
// @Success 200 {array} domain.User
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.identity.ListUsers())
}

// GetUser godoc
// @Summary Get a user account by ID
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.User
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.identity.GetUser(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create a user account
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User account"
// @Success 201 {object} domain.User
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.identity.CreateUser(&req)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "Email is already in use")
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	respondJSON(w, http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary Update a user account
// @Description Updates only the fields present in the request body
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body domain.UpdateUserRequest true "Fields to update"
// @Success 200 {object} domain.User
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.identity.UpdateUser(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, store.ErrEmailTaken):
			respondWithError(w, http.StatusConflict, "Email is already in use")
		default:
			h.logger.Error("failed to update user", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user account
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if userCtx, ok := auth.FromContext(r.Context()); ok && userCtx.UserID == id {
		respondWithError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.identity.DeleteUser(id); err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	h.logger.Info("user deleted", zap.String("user_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
