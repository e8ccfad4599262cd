// Package http provides the reference backend's HTTP handlers and router.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/middleware"
	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/service"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Profile(ctx context.Context, userID string) (*models.Identity, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Identity, error)
}

// AuthHandler handles HTTP requests for accounts and sessions.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	Log         *zap.Logger
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	resp, err := h.AuthService.Register(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "name, email and password are required")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email already registered")
	case err != nil:
		h.internal(w, "register", err)
	default:
		writeJSON(w, http.StatusCreated, resp)
	}
}

// Login handles POST /auth/login. Bad credentials are a 400, not a 401:
// a 401 tells the client its stored credential is no longer valid.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	resp, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "email and password are required")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "invalid email or password")
	case err != nil:
		h.internal(w, "login", err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.Profile(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "session expired")
	case err != nil:
		h.internal(w, "profile", err)
	default:
		writeJSON(w, http.StatusOK, models.ProfileResponse{User: u})
	}
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	u, err := h.AuthService.UpdateProfile(r.Context(), middleware.GetUserIDFromContext(r.Context()), update)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid name or learning level")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "session expired")
	case err != nil:
		h.internal(w, "update profile", err)
	default:
		writeJSON(w, http.StatusOK, models.ProfileResponse{User: u})
	}
}

func (h *AuthHandler) internal(w http.ResponseWriter, op string, err error) {
	if h.Log != nil {
		h.Log.Error(op+" failed", zap.Error(err))
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
