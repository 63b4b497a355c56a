package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/service"
)

// UserHandler handles HTTP requests for the caller's own account.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// DeleteMe handles DELETE /api/users/me. The account is removed and
// the token that authenticated this request is revoked with it.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	raw := auth.ExtractBearerToken(r.Header.Get("Authorization"))

	if err := h.users.DeleteAccount(r.Context(), ident.Username, raw); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
