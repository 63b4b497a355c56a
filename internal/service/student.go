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

// Student service errors.
var (
	ErrStudentCodeRequired  = errors.New("student code number is required")
	ErrStudentNameRequired  = errors.New("student first and last name are required")
	ErrStudentTitleRequired = errors.New("student title is required")
	ErrStudentCodeExists    = errors.New("this student code number is already taken")
	ErrStudentNameExists    = errors.New("a student with this name already exists")
	ErrSearchQueryRequired  = errors.New("search query is required")
)

const (
	maxStudentCodeLength = 20
	maxStudentNameLength = 100
)

// listCacheStudents is the cache entity key for student lists.
const listCacheStudents = "students"

// StudentService handles student CRUD and search with ownership scoping.
type StudentService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(repo *repository.Repository, cache *cache.Cache, logger *slog.Logger) *StudentService {
	return &StudentService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// StudentInput defines input for creating or updating a student.
type StudentInput struct {
	CodeNumber  string
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Title       string
	Description string
	ProjectID   int64
}

// validate normalizes and checks the input.
func (in *StudentInput) validate() error {
	in.CodeNumber = strings.TrimSpace(in.CodeNumber)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Title = strings.TrimSpace(in.Title)

	if in.CodeNumber == "" || len(in.CodeNumber) > maxStudentCodeLength {
		return ErrStudentCodeRequired
	}
	if in.FirstName == "" || in.LastName == "" ||
		len(in.FirstName) > maxStudentNameLength || len(in.LastName) > maxStudentNameLength {
		return ErrStudentNameRequired
	}
	if in.Title == "" {
		return ErrStudentTitleRequired
	}
	return nil
}

// List returns the students visible to the caller, optionally limited
// to one project. Unfiltered listings are cached per caller.
func (s *StudentService) List(ctx context.Context, ident *auth.Identity, projectID int64) ([]*model.Student, error) {
	if ident == nil {
		return nil, ErrNotFound
	}

	if projectID == 0 {
		if data := s.cache.GetList(ctx, listCacheStudents, ident.UserID); data != nil {
			var students []*model.Student
			if err := json.Unmarshal(data, &students); err == nil {
				return students, nil
			}
		}
	}

	students, err := s.repo.ListStudentsVisible(ctx, ident.UserID, ident.Role.CanAccessUnowned(), projectID)
	if err != nil {
		return nil, err
	}

	if projectID == 0 {
		if data, err := json.Marshal(students); err == nil {
			_ = s.cache.SetList(ctx, listCacheStudents, ident.UserID, data)
		}
	}

	return students, nil
}

// Get returns one student if the caller may access it.
func (s *StudentService) Get(ctx context.Context, ident *auth.Identity, id int64) (*model.Student, error) {
	return s.loadAccessible(ctx, ident, id)
}

// SearchByCode looks a student up by its unique code number. Records
// the caller cannot access behave as absent.
func (s *StudentService) SearchByCode(ctx context.Context, ident *auth.Identity, code string) (*model.Student, error) {
	if ident == nil {
		return nil, ErrNotFound
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrSearchQueryRequired
	}

	student, err := s.repo.GetStudentByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student by code: %w", err)
	}
	if !CanAccess(ident, student.OwnerID) {
		return nil, ErrNotFound
	}

	return student, nil
}

// SearchByName matches first or last name within the caller's visible
// rows, optionally limited to one project.
func (s *StudentService) SearchByName(ctx context.Context, ident *auth.Identity, name string, projectID int64) ([]*model.Student, error) {
	if ident == nil {
		return nil, ErrNotFound
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSearchQueryRequired
	}

	return s.repo.SearchStudentsByName(ctx, ident.UserID, ident.Role.CanAccessUnowned(), name, projectID)
}

// Create stores a new student owned by the caller. The referenced
// project must be visible to the caller.
func (s *StudentService) Create(ctx context.Context, ident *auth.Identity, input StudentInput) (*model.Student, error) {
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
	student := &model.Student{
		CodeNumber:  input.CodeNumber,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		DateOfBirth: input.DateOfBirth,
		Title:       input.Title,
		Description: input.Description,
		ProjectID:   input.ProjectID,
		OwnerID:     &ownerID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateStudent(ctx, student); err != nil {
		return nil, s.mapStudentError(err)
	}

	s.invalidateList(ctx, ident)
	s.logger.Info("student created",
		slog.Int64("student_id", student.ID),
		slog.Int64("project_id", student.ProjectID),
		slog.String("owner", ident.Username),
	)

	return student, nil
}

// Update modifies a student the caller may access. The project
// assignment is not changed by updates.
func (s *StudentService) Update(ctx context.Context, ident *auth.Identity, id int64, input StudentInput) (*model.Student, error) {
	student, err := s.loadAccessible(ctx, ident, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	student.CodeNumber = input.CodeNumber
	student.FirstName = input.FirstName
	student.LastName = input.LastName
	student.DateOfBirth = input.DateOfBirth
	student.Title = input.Title
	student.Description = input.Description

	if err := s.repo.UpdateStudent(ctx, student); err != nil {
		return nil, s.mapStudentError(err)
	}

	s.invalidateList(ctx, ident)
	return student, nil
}

// Delete removes a student the caller may access.
func (s *StudentService) Delete(ctx context.Context, ident *auth.Identity, id int64) error {
	student, err := s.loadAccessible(ctx, ident, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteStudent(ctx, student.ID); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete student: %w", err)
	}

	s.invalidateList(ctx, ident)
	return nil
}

// loadAccessible fetches a student and applies the ownership check.
func (s *StudentService) loadAccessible(ctx context.Context, ident *auth.Identity, id int64) (*model.Student, error) {
	if ident == nil {
		return nil, ErrNotFound
	}

	student, err := s.repo.GetStudentByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	if !CanAccess(ident, student.OwnerID) {
		return nil, ErrNotFound
	}

	return student, nil
}

// checkProjectAccess verifies the referenced project exists and is
// visible to the caller. Invisible projects behave as absent.
func (s *StudentService) checkProjectAccess(ctx context.Context, ident *auth.Identity, projectID int64) error {
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

// mapStudentError converts repository errors to service errors.
func (s *StudentService) mapStudentError(err error) error {
	switch {
	case errors.Is(err, repository.ErrStudentCodeExists):
		return ErrStudentCodeExists
	case errors.Is(err, repository.ErrStudentNameExists):
		return ErrStudentNameExists
	case errors.Is(err, repository.ErrStudentNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("student repository: %w", err)
	}
}

// invalidateList drops the caller's cached student list after a mutation.
func (s *StudentService) invalidateList(ctx context.Context, ident *auth.Identity) {
	if err := s.cache.InvalidateList(ctx, listCacheStudents, ident.UserID); err != nil {
		s.logger.Warn("failed to invalidate student list cache",
			slog.String("error", err.Error()),
		)
	}
}
