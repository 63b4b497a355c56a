package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/handler/dto"
	"github.com/projectdesk/projectdesk/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	svc    *service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/tasks. An optional project_id query parameter
// limits the listing to one project.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.List(r.Context(), auth.IdentityFromContext(r.Context()), parseProjectIDQuery(r))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(tasks))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Get(r.Context(), auth.IdentityFromContext(r.Context()), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// SearchByCode handles GET /api/tasks/search/code/{code}.
func (h *TaskHandler) SearchByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	task, err := h.svc.SearchByCode(r.Context(), auth.IdentityFromContext(r.Context()), code)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// SearchByTitle handles GET /api/tasks/search/title?q=<title>.
func (h *TaskHandler) SearchByTitle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	tasks, err := h.svc.SearchByTitle(r.Context(), auth.IdentityFromContext(r.Context()), query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(tasks))
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Create(r.Context(), auth.IdentityFromContext(r.Context()), taskInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("task_created", "task_id", task.ID, "status", task.Status)

	writeJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	req, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Update(r.Context(), auth.IdentityFromContext(r.Context()), id, taskInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("task_updated", "task_id", task.ID, "status", task.Status)

	writeJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.IdentityFromContext(r.Context()), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("task_deleted", "task_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps task service errors to HTTP responses.
func (h *TaskHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, service.ErrTaskCodeExists):
		writeError(w, http.StatusConflict, "CODE_TAKEN", "This task code number is already taken")
	case errors.Is(err, service.ErrTaskTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Task title is required")
	case errors.Is(err, service.ErrTaskInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Invalid task status")
	case errors.Is(err, service.ErrTaskInvalidPriority):
		writeError(w, http.StatusBadRequest, "INVALID_PRIORITY", "Invalid task priority")
	case errors.Is(err, service.ErrSearchQueryRequired):
		writeError(w, http.StatusBadRequest, "QUERY_REQUIRED", "Search query is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

func decodeTaskRequest(w http.ResponseWriter, r *http.Request) (dto.TaskRequest, bool) {
	var req dto.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return req, false
	}
	return req, true
}

func taskInput(req dto.TaskRequest) service.TaskInput {
	return service.TaskInput{
		CodeNumber:  req.CodeNumber,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		ProjectID:   req.ProjectID,
	}
}
