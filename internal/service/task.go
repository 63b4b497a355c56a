package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/cache"
	"github.com/projectdesk/projectdesk/internal/model"
	"github.com/projectdesk/projectdesk/internal/repository"
)

// Task service errors.
var (
	ErrTaskTitleRequired   = errors.New("task title is required")
	ErrTaskInvalidStatus   = errors.New("invalid task status")
	ErrTaskInvalidPriority = errors.New("invalid task priority")
	ErrTaskCodeExists      = errors.New("this task code number is already taken")
)

const (
	maxTaskTitleLength = 200
	maxTaskTags        = 10
)

// listCacheTasks is the cache entity key for task lists.
const listCacheTasks = "tasks"

// TaskService handles task CRUD and search with ownership scoping.
type TaskService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(repo *repository.Repository, cache *cache.Cache, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// TaskInput defines input for creating or updating a task.
type TaskInput struct {
	CodeNumber  string
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	Tags        []string
	ProjectID   int64
}

// validate normalizes and checks the input.
func (in *TaskInput) validate() error {
	in.CodeNumber = strings.TrimSpace(in.CodeNumber)
	in.Title = strings.TrimSpace(in.Title)

	if in.Title == "" || len(in.Title) > maxTaskTitleLength {
		return ErrTaskTitleRequired
	}

	if in.Status == "" {
		in.Status = model.TaskStatusOpen
	}
	if !slices.Contains(model.ValidTaskStatuses, in.Status) {
		return ErrTaskInvalidStatus
	}

	if in.Priority != "" && !slices.Contains(model.ValidTaskPriorities, in.Priority) {
		return ErrTaskInvalidPriority
	}

	// Drop blank tags, cap the count.
	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		tag = strings.TrimSpace(tag)
		if tag != "" && !slices.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}
	if len(tags) > maxTaskTags {
		tags = tags[:maxTaskTags]
	}
	in.Tags = tags

	return nil
}

// List returns the tasks visible to the caller, optionally limited to
// one project. Unfiltered listings are cached per caller.
func (s *TaskService) List(ctx context.Context, ident *auth.Identity, projectID int64) ([]*model.Task, error) {
	if ident == nil {
		return nil, ErrNotFound
	}

	if projectID == 0 {
		if data := s.cache.GetList(ctx, listCacheTasks, ident.UserID); data != nil {
			var tasks []*model.Task
			if err := json.Unmarshal(data, &tasks); err == nil {
				return tasks, nil
			}
		}
	}

	tasks, err := s.repo.ListTasksVisible(ctx, ident.UserID, ident.Role.CanAccessUnowned(), projectID)
	if err != nil {
		return nil, err
	}

	if projectID == 0 {
		if data, err := json.Marshal(tasks); err == nil {
			_ = s.cache.SetList(ctx, listCacheTasks, ident.UserID, data)
		}
	}

	return tasks, nil
}

// Get returns one task if the caller may access it.
func (s *TaskService) Get(ctx context.Context, ident *auth.Identity, id int64) (*model.Task, error) {
	return s.loadAccessible(ctx, ident, id)
}

// SearchByCode looks a task up by its unique code number.
func (s *TaskService) SearchByCode(ctx context.Context, ident *auth.Identity, code string) (*model.Task, error) {
	if ident == nil {
		return nil, ErrNotFound
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrSearchQueryRequired
	}

	task, err := s.repo.GetTaskByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task by code: %w", err)
	}
	if !CanAccess(ident, task.OwnerID) {
		return nil, ErrNotFound
	}

	return task, nil
}

// SearchByTitle matches the title within the caller's visible rows.
func (s *TaskService) SearchByTitle(ctx context.Context, ident *auth.Identity, title string) ([]*model.Task, error) {
	if ident == nil {
		return nil, ErrNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrSearchQueryRequired
	}

	return s.repo.SearchTasksByTitle(ctx, ident.UserID, ident.Role.CanAccessUnowned(), title)
}

// Create stores a new task owned by the caller. The referenced project
// must be visible to the caller.
func (s *TaskService) Create(ctx context.Context, ident *auth.Identity, input TaskInput) (*model.Task, error) {
	if ident == nil {
		return nil, ErrNotFound
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.checkProjectAccess(ctx, ident, input.ProjectID); err != nil {
		return nil, err
	}

	ownerID := ident.UserID
	task := &model.Task{
		CodeNumber:  input.CodeNumber,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		ProjectID:   input.ProjectID,
		OwnerID:     &ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskCodeExists) {
			return nil, ErrTaskCodeExists
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.invalidateList(ctx, ident)
	s.logger.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("project_id", task.ProjectID),
		slog.String("owner", ident.Username),
	)

	return task, nil
}

// Update modifies a task the caller may access. The project assignment
// is not changed by updates.
func (s *TaskService) Update(ctx context.Context, ident *auth.Identity, id int64, input TaskInput) (*model.Task, error) {
	task, err := s.loadAccessible(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	task.CodeNumber = input.CodeNumber
	task.Title = input.Title
	task.Description = input.Description
	task.Status = input.Status
	task.Priority = input.Priority
	task.DueDate = input.DueDate
	task.Tags = input.Tags

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskCodeExists) {
			return nil, ErrTaskCodeExists
		}
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.invalidateList(ctx, ident)
	return task, nil
}

// Delete removes a task the caller may access.
func (s *TaskService) Delete(ctx context.Context, ident *auth.Identity, id int64) error {
	task, err := s.loadAccessible(ctx, ident, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}

	s.invalidateList(ctx, ident)
	return nil
}

// loadAccessible fetches a task and applies the ownership check.
func (s *TaskService) loadAccessible(ctx context.Context, ident *auth.Identity, id int64) (*model.Task, error) {
	if ident == nil {
		return nil, ErrNotFound
	}

	task, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	if !CanAccess(ident, task.OwnerID) {
		return nil, ErrNotFound
	}

	return task, nil
}

// checkProjectAccess verifies the referenced project exists and is
// visible to the caller.
func (s *TaskService) checkProjectAccess(ctx context.Context, ident *auth.Identity, projectID int64) error {
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}
	if !CanAccess(ident, project.OwnerID) {
		return ErrNotFound
	}
	return nil
}

// invalidateList drops the caller's cached task list after a mutation.
func (s *TaskService) invalidateList(ctx context.Context, ident *auth.Identity) {
	if err := s.cache.InvalidateList(ctx, listCacheTasks, ident.UserID); err != nil {
		s.logger.Warn("failed to invalidate task list cache",
			slog.String("error", err.Error()),
		)
	}
}
