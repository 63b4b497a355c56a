package dto

import (
	"time"

	"github.com/projectdesk/projectdesk/internal/model"
)

// ProjectRequest represents the request body for creating or updating
// a project.
type ProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ProjectListResponse represents a list of projects.
type ProjectListResponse struct {
	Data []ProjectResponse `json:"data"`
}

// ToProjectResponse converts a Project model to ProjectResponse DTO.
func ToProjectResponse(p *model.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
	}
}

// ToProjectListResponse converts project models to a list response.
func ToProjectListResponse(projects []*model.Project) *ProjectListResponse {
	data := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		data = append(data, *ToProjectResponse(p))
	}
	return &ProjectListResponse{Data: data}
}
