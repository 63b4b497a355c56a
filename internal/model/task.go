// Package model defines domain entities for the application.
package model

import "time"

// TaskStatus values accepted for tasks.
const (
	TaskStatusOpen       = "OPEN"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// TaskPriority values accepted for tasks.
const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

// ValidTaskStatuses contains all accepted task status values.
var ValidTaskStatuses = []string{TaskStatusOpen, TaskStatusInProgress, TaskStatusDone}

// ValidTaskPriorities contains all accepted task priority values.
var ValidTaskPriorities = []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

// Task represents a unit of work inside a project.
// CodeNumber is unique when set.
type Task struct {
	ID          int64      `json:"id"`
	CodeNumber  string     `json:"code_number,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ProjectID   int64      `json:"project_id"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
