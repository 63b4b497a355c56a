// Package model defines domain entities for the application.
package model

import "time"

// Project represents a project grouping students and tasks.
// Name is unique. OwnerID is nil for legacy rows created before
// ownership was introduced.
type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
