package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/projectdesk/projectdesk/internal/model"
)

// Common errors for task repository operations.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskCodeExists = errors.New("task code number already exists")
)

// code_number and project_id are NULL when unset; the model uses zero
// values, so NULLIF on write keeps the unique and FK constraints honest.
const taskColumns = "id, COALESCE(code_number, ''), title, description, status, priority, due_date, tags, COALESCE(project_id, 0), owner_id, created_at"

// CreateTask inserts a new task and fills in its generated ID.
func (r *Repository) CreateTask(ctx context.Context, t *model.Task) error {
	query := `
		INSERT INTO tasks (code_number, title, description, status, priority, due_date, tags, project_id, owner_id, created_at)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, NULLIF($8, 0), $9, $10)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		t.CodeNumber,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.DueDate,
		pq.Array(t.Tags),
		t.ProjectID,
		t.OwnerID,
		t.CreatedAt,
	).Scan(&t.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTaskCodeExists
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTaskByID retrieves a task by its ID.
func (r *Repository) GetTaskByID(ctx context.Context, id int64) (*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`

	t, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}

	return t, nil
}

// GetTaskByCode retrieves a task by its unique code number.
func (r *Repository) GetTaskByCode(ctx context.Context, code string) (*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE code_number = $1
	`

	t, err := scanTask(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task by code: %w", err)
	}

	return t, nil
}

// ListTasksVisible returns tasks owned by the given user, plus unowned
// rows when includeUnowned is set. A non-zero projectID restricts the
// listing to one project.
func (r *Repository) ListTasksVisible(ctx context.Context, ownerID int64, includeUnowned bool, projectID int64) ([]*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE (owner_id = $1 OR ($2 AND owner_id IS NULL))
		  AND ($3 = 0 OR project_id = $3)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, includeUnowned, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// SearchTasksByTitle matches the title, case-insensitive substring,
// within the caller's visible rows.
func (r *Repository) SearchTasksByTitle(ctx context.Context, ownerID int64, includeUnowned bool, title string) ([]*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE (owner_id = $1 OR ($2 AND owner_id IS NULL))
		  AND title ILIKE '%' || $3 || '%'
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, includeUnowned, title)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// UpdateTask persists changes to a task record.
func (r *Repository) UpdateTask(ctx context.Context, t *model.Task) error {
	query := `
		UPDATE tasks
		SET code_number = NULLIF($2, ''), title = $3, description = $4, status = $5, priority = $6, due_date = $7, tags = $8
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		t.ID,
		t.CodeNumber,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.DueDate,
		pq.Array(t.Tags),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTaskCodeExists
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// DeleteTask removes a task record.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	query := `
		DELETE FROM tasks
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// scanTask reads one task row.
func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID,
		&t.CodeNumber,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		pq.Array(&t.Tags),
		&t.ProjectID,
		&t.OwnerID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// collectTasks drains the rows into a slice.
func collectTasks(rows pgx.Rows) ([]*model.Task, error) {
	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
