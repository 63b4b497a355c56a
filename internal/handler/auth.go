package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/handler/dto"
	"github.com/projectdesk/projectdesk/internal/service"
)

// AuthHandler handles HTTP requests for login, logout, and
// registration.
type AuthHandler struct {
	authn  *auth.Authenticator
	users  *service.UserService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authn *auth.Authenticator, users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authn:  authn,
		users:  users,
		logger: logger,
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	tokenString, err := h.authn.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// Same message whether the user exists or not.
			writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:    tokenString,
		Username: req.Username,
	})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleRegisterError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Logout handles POST /api/auth/logout. The presented token is
// revoked; a request without one is rejected since there is nothing to
// revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := auth.ExtractBearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Authorization header with bearer token is required")
		return
	}

	h.authn.Logout(r.Context(), raw)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// handleRegisterError maps registration errors to HTTP responses.
func (h *AuthHandler) handleRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username is already taken")
	case errors.Is(err, service.ErrUsernameRequired):
		writeError(w, http.StatusBadRequest, "USERNAME_REQUIRED", "Username is required")
	case errors.Is(err, service.ErrUsernameTooLong):
		writeError(w, http.StatusBadRequest, "USERNAME_TOO_LONG", "Username exceeds maximum length")
	case errors.Is(err, service.ErrPasswordRequired):
		writeError(w, http.StatusBadRequest, "PASSWORD_REQUIRED", "Password is required")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "Password must be at least 8 characters")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
