package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/projectdesk/projectdesk/internal/model"
)

// Common errors for student repository operations.
var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrStudentCodeExists = errors.New("student code number already exists")
	ErrStudentNameExists = errors.New("student name already exists")
)

// project_id is NULL for unassigned students; the model uses zero.
const studentColumns = "id, code_number, first_name, last_name, date_of_birth, title, description, COALESCE(project_id, 0), owner_id, created_at"

// CreateStudent inserts a new student and fills in its generated ID.
func (r *Repository) CreateStudent(ctx context.Context, s *model.Student) error {
	query := `
		INSERT INTO students (code_number, first_name, last_name, date_of_birth, title, description, project_id, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8, $9)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		s.CodeNumber,
		s.FirstName,
		s.LastName,
		s.DateOfBirth,
		s.Title,
		s.Description,
		s.ProjectID,
		s.OwnerID,
		s.CreatedAt,
	).Scan(&s.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return studentUniqueError(err)
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetStudentByID retrieves a student by its ID.
func (r *Repository) GetStudentByID(ctx context.Context, id int64) (*model.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE id = $1
	`

	s, err := scanStudent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student by ID: %w", err)
	}

	return s, nil
}

// GetStudentByCode retrieves a student by its unique code number.
func (r *Repository) GetStudentByCode(ctx context.Context, code string) (*model.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE code_number = $1
	`

	s, err := scanStudent(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student by code: %w", err)
	}

	return s, nil
}

// ListStudentsVisible returns students owned by the given user, plus
// unowned rows when includeUnowned is set. A non-zero projectID
// restricts the listing to one project.
func (r *Repository) ListStudentsVisible(ctx context.Context, ownerID int64, includeUnowned bool, projectID int64) ([]*model.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE (owner_id = $1 OR ($2 AND owner_id IS NULL))
		  AND ($3 = 0 OR project_id = $3)
		ORDER BY last_name, first_name, id
	`

	rows, err := r.pool.Query(ctx, query, ownerID, includeUnowned, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// SearchStudentsByName matches first or last name, case-insensitive
// substring, within the caller's visible rows.
func (r *Repository) SearchStudentsByName(ctx context.Context, ownerID int64, includeUnowned bool, name string, projectID int64) ([]*model.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE (owner_id = $1 OR ($2 AND owner_id IS NULL))
		  AND ($3 = 0 OR project_id = $3)
		  AND (first_name ILIKE '%' || $4 || '%' OR last_name ILIKE '%' || $4 || '%')
		ORDER BY last_name, first_name, id
	`

	rows, err := r.pool.Query(ctx, query, ownerID, includeUnowned, projectID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search students: %w", err)
	}
	defer rows.Close()

	return collectStudents(rows)
}

// UpdateStudent persists changes to a student record.
func (r *Repository) UpdateStudent(ctx context.Context, s *model.Student) error {
	query := `
		UPDATE students
		SET code_number = $2, first_name = $3, last_name = $4, date_of_birth = $5, title = $6, description = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		s.ID,
		s.CodeNumber,
		s.FirstName,
		s.LastName,
		s.DateOfBirth,
		s.Title,
		s.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return studentUniqueError(err)
		}
		return fmt.Errorf("failed to update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}

	return nil
}

// DeleteStudent removes a student record.
func (r *Repository) DeleteStudent(ctx context.Context, id int64) error {
	query := `
		DELETE FROM students
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}

	return nil
}

// studentUniqueError maps the violated constraint to a sentinel error.
func studentUniqueError(err error) error {
	if err != nil && strings.Contains(err.Error(), "uk_student_name") {
		return ErrStudentNameExists
	}
	return ErrStudentCodeExists
}

// scanStudent reads one student row.
func scanStudent(row pgx.Row) (*model.Student, error) {
	var s model.Student
	err := row.Scan(
		&s.ID,
		&s.CodeNumber,
		&s.FirstName,
		&s.LastName,
		&s.DateOfBirth,
		&s.Title,
		&s.Description,
		&s.ProjectID,
		&s.OwnerID,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// collectStudents drains the rows into a slice.
func collectStudents(rows pgx.Rows) ([]*model.Student, error) {
	var students []*model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
