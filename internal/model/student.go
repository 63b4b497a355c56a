// Package model defines domain entities for the application.
package model

import "time"

// Student represents a student enrolled in a project.
// CodeNumber is unique; the (FirstName, LastName) pair is unique as well.
type Student struct {
	ID          int64      `json:"id"`
	CodeNumber  string     `json:"code_number"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProjectID   int64      `json:"project_id"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
