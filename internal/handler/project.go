package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/handler/dto"
	"github.com/projectdesk/projectdesk/internal/service"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	svc    *service.ProjectService
	logger *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())

	projects, err := h.svc.List(r.Context(), ident)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectListResponse(projects))
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	project, err := h.svc.Get(r.Context(), auth.IdentityFromContext(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(project))
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	project, err := h.svc.Create(r.Context(), auth.IdentityFromContext(r.Context()), service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_created", "project_id", project.ID, "name", project.Name)

	writeJSON(w, http.StatusCreated, dto.ToProjectResponse(project))
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	project, err := h.svc.Update(r.Context(), auth.IdentityFromContext(r.Context()), id, service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_updated", "project_id", project.ID)

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(project))
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_deleted", "project_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps project service errors to HTTP responses.
func (h *ProjectHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrProjectNameExists):
		writeError(w, http.StatusConflict, "PROJECT_NAME_TAKEN", "Project with this name already exists")
	case errors.Is(err, service.ErrProjectNameRequired):
		writeError(w, http.StatusBadRequest, "NAME_REQUIRED", "Project name is required")
	case errors.Is(err, service.ErrProjectNameTooLong):
		writeError(w, http.StatusBadRequest, "NAME_TOO_LONG", "Project name exceeds maximum length")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// parseIDParam parses the {id} route parameter. Non-numeric values are
// rejected before touching the database.
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "ID must be a positive integer")
		return 0, false
	}
	return id, true
}
