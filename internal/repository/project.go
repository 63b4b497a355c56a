package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/projectdesk/projectdesk/internal/model"
)

// Common errors for project repository operations.
var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectNameExists = errors.New("project name already exists")
)

const projectColumns = "id, name, description, start_date, owner_id, created_at"

// CreateProject inserts a new project and fills in its generated ID.
func (r *Repository) CreateProject(ctx context.Context, p *model.Project) error {
	query := `
		INSERT INTO projects (name, description, start_date, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.StartDate,
		p.OwnerID,
		p.CreatedAt,
	).Scan(&p.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProjectNameExists
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProjectByID retrieves a project by its ID.
func (r *Repository) GetProjectByID(ctx context.Context, id int64) (*model.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1
	`

	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}

	return p, nil
}

// GetProjectByName retrieves a project by its unique name.
func (r *Repository) GetProjectByName(ctx context.Context, name string) (*model.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE name = $1
	`

	p, err := scanProject(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by name: %w", err)
	}

	return p, nil
}

// ListProjectsVisible returns projects owned by the given user, plus
// unowned legacy projects when includeUnowned is set (admin callers).
func (r *Repository) ListProjectsVisible(ctx context.Context, ownerID int64, includeUnowned bool) ([]*model.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE owner_id = $1 OR ($2 AND owner_id IS NULL)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, includeUnowned)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// UpdateProject persists name, description, and start date changes.
func (r *Repository) UpdateProject(ctx context.Context, p *model.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, start_date = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Description, p.StartDate)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProjectNameExists
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// DeleteProject removes a project. Students and tasks cascade at the
// database level.
func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	query := `
		DELETE FROM projects
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// scanProject reads one project row.
func scanProject(row pgx.Row) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.StartDate,
		&p.OwnerID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
