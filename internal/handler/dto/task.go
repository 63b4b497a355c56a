package dto

import (
	"time"

	"github.com/projectdesk/projectdesk/internal/model"
)

// TaskRequest represents the request body for creating or updating a
// task.
type TaskRequest struct {
	CodeNumber  string     `json:"code_number,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ProjectID   int64      `json:"project_id,omitempty"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          int64      `json:"id"`
	CodeNumber  string     `json:"code_number,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ProjectID   int64      `json:"project_id,omitempty"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskListResponse represents a list of tasks.
type TaskListResponse struct {
	Data []TaskResponse `json:"data"`
}

// ToTaskResponse converts a Task model to TaskResponse DTO.
func ToTaskResponse(t *model.Task) *TaskResponse {
	return &TaskResponse{
		ID:          t.ID,
		CodeNumber:  t.CodeNumber,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        t.Tags,
		ProjectID:   t.ProjectID,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTaskListResponse converts task models to a list response.
func ToTaskListResponse(tasks []*model.Task) *TaskListResponse {
	data := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		data = append(data, *ToTaskResponse(t))
	}
	return &TaskListResponse{Data: data}
}
