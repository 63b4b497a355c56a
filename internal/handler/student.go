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

// StudentHandler handles HTTP requests for student operations.
type StudentHandler struct {
	svc    *service.StudentService
	logger *slog.Logger
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(svc *service.StudentService, logger *slog.Logger) *StudentHandler {
	return &StudentHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/students. An optional project_id query
// parameter limits the listing to one project.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.svc.List(r.Context(), auth.IdentityFromContext(r.Context()), parseProjectIDQuery(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStudentListResponse(students))
}

// Get handles GET /api/students/{id}.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	student, err := h.svc.Get(r.Context(), auth.IdentityFromContext(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStudentResponse(student))
}

// SearchByCode handles GET /api/students/search/code/{code}.
func (h *StudentHandler) SearchByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	student, err := h.svc.SearchByCode(r.Context(), auth.IdentityFromContext(r.Context()), code)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStudentResponse(student))
}

// SearchByName handles GET /api/students/search/name?q=<name>.
func (h *StudentHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	students, err := h.svc.SearchByName(r.Context(), auth.IdentityFromContext(r.Context()), query, parseProjectIDQuery(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStudentListResponse(students))
}

// Create handles POST /api/students.
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStudentRequest(w, r)
	if !ok {
		return
	}

	student, err := h.svc.Create(r.Context(), auth.IdentityFromContext(r.Context()), studentInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("student_created", "student_id", student.ID, "code_number", student.CodeNumber)

	writeJSON(w, http.StatusCreated, dto.ToStudentResponse(student))
}

// Update handles PUT /api/students/{id}.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	req, ok := decodeStudentRequest(w, r)
	if !ok {
		return
	}

	student, err := h.svc.Update(r.Context(), auth.IdentityFromContext(r.Context()), id, studentInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("student_updated", "student_id", student.ID)

	writeJSON(w, http.StatusOK, dto.ToStudentResponse(student))
}

// Delete handles DELETE /api/students/{id}.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("student_deleted", "student_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps student service errors to HTTP responses.
func (h *StudentHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrStudentCodeExists):
		writeError(w, http.StatusConflict, "CODE_TAKEN", "This student code number is already taken")
	case errors.Is(err, service.ErrStudentNameExists):
		writeError(w, http.StatusConflict, "NAME_TAKEN", "A student with this name already exists")
	case errors.Is(err, service.ErrStudentCodeRequired):
		writeError(w, http.StatusBadRequest, "CODE_REQUIRED", "Student code number is required")
	case errors.Is(err, service.ErrStudentNameRequired):
		writeError(w, http.StatusBadRequest, "NAME_REQUIRED", "Student first and last name are required")
	case errors.Is(err, service.ErrStudentTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Student title is required")
	case errors.Is(err, service.ErrSearchQueryRequired):
		writeError(w, http.StatusBadRequest, "QUERY_REQUIRED", "Search query is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func decodeStudentRequest(w http.ResponseWriter, r *http.Request) (dto.StudentRequest, bool) {
	var req dto.StudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return req, false
	}
	return req, true
}

func studentInput(req dto.StudentRequest) service.StudentInput {
	return service.StudentInput{
		CodeNumber:  req.CodeNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
	}
}

// parseProjectIDQuery reads an optional project_id query parameter.
// Zero means no filter.
func parseProjectIDQuery(r *http.Request) int64 {
	raw := r.URL.Query().Get("project_id")
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
