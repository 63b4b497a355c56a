package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/cache"
	"github.com/projectdesk/projectdesk/internal/model"
	"github.com/projectdesk/projectdesk/internal/repository"
)

// Project service errors.
var (
	ErrProjectNameRequired = errors.New("project name is required")
	ErrProjectNameTooLong  = errors.New("project name exceeds maximum length")
	ErrProjectNameExists   = errors.New("project with this name already exists")
)

const maxProjectNameLength = 100

// listCacheProjects is the cache entity key for project lists.
const listCacheProjects = "projects"

// ProjectService handles project business logic with ownership scoping.
type ProjectService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(repo *repository.Repository, cache *cache.Cache, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ProjectInput defines input for creating or updating a project.
type ProjectInput struct {
	Name        string
	Description string
	StartDate   *time.Time
}

// validate normalizes and checks the input.
func (in *ProjectInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrProjectNameRequired
	}
	if len(in.Name) > maxProjectNameLength {
		return ErrProjectNameTooLong
	}
	return nil
}

// List returns the projects visible to the caller: owned rows, plus
// unowned legacy rows for admins. Results are cached per caller for a
// short interval.
func (s *ProjectService) List(ctx context.Context, ident *auth.Identity) ([]*model.Project, error) {
	if ident == nil {
		return nil, ErrNotFound
	}

	if data := s.cache.GetList(ctx, listCacheProjects, ident.UserID); data != nil {
		var projects []*model.Project
		if err := json.Unmarshal(data, &projects); err == nil {
			return projects, nil
		}
		// Corrupted cache entry - fall through to the database.
	}

	projects, err := s.repo.ListProjectsVisible(ctx, ident.UserID, ident.Role.CanAccessUnowned())
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(projects); err == nil {
		_ = s.cache.SetList(ctx, listCacheProjects, ident.UserID, data)
	}

	return projects, nil
}

// Get returns one project if the caller may access it. Inaccessible and
// nonexistent projects are indistinguishable.
func (s *ProjectService) Get(ctx context.Context, ident *auth.Identity, id int64) (*model.Project, error) {
	return s.loadAccessible(ctx, ident, id)
}

// Create stores a new project owned by the caller. The owner is always
// the creator; callers cannot assign ownership elsewhere.
func (s *ProjectService) Create(ctx context.Context, ident *auth.Identity, input ProjectInput) (*model.Project, error) {
	if ident == nil {
		return nil, ErrNotFound
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	ownerID := ident.UserID
	project := &model.Project{
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		OwnerID:     &ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNameExists) {
			return nil, ErrProjectNameExists
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.invalidateList(ctx, ident)
	s.logger.Info("project created",
		slog.Int64("project_id", project.ID),
		slog.String("owner", ident.Username),
	)

	return project, nil
}

// Update modifies a project the caller may access.
func (s *ProjectService) Update(ctx context.Context, ident *auth.Identity, id int64, input ProjectInput) (*model.Project, error) {
	project, err := s.loadAccessible(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	project.Name = input.Name
	project.Description = input.Description
	project.StartDate = input.StartDate

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNameExists) {
			return nil, ErrProjectNameExists
		}
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.invalidateList(ctx, ident)
	return project, nil
}

// Delete removes a project the caller may access, cascading to its
// students and tasks.
func (s *ProjectService) Delete(ctx context.Context, ident *auth.Identity, id int64) error {
	project, err := s.loadAccessible(ctx, ident, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteProject(ctx, project.ID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}

	s.invalidateList(ctx, ident)
	s.logger.Info("project deleted",
		slog.Int64("project_id", id),
		slog.String("caller", ident.Username),
	)

	return nil
}

// loadAccessible fetches a project and applies the ownership check.
func (s *ProjectService) loadAccessible(ctx context.Context, ident *auth.Identity, id int64) (*model.Project, error) {
	if ident == nil {
		return nil, ErrNotFound
	}

	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	if !CanAccess(ident, project.OwnerID) {
		return nil, ErrNotFound
	}

	return project, nil
}

// invalidateList drops the caller's cached project list after a mutation.
func (s *ProjectService) invalidateList(ctx context.Context, ident *auth.Identity) {
	if err := s.cache.InvalidateList(ctx, listCacheProjects, ident.UserID); err != nil {
		s.logger.Warn("failed to invalidate project list cache",
			slog.String("error", err.Error()),
		)
	}
}
