package dto

import (
	"time"

	"github.com/projectdesk/projectdesk/internal/model"
)

// StudentRequest represents the request body for creating or updating
// a student.
type StudentRequest struct {
	CodeNumber  string     `json:"code_number"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProjectID   int64      `json:"project_id,omitempty"`
}

// StudentResponse represents a student in API responses.
type StudentResponse struct {
	ID          int64      `json:"id"`
	CodeNumber  string     `json:"code_number"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProjectID   int64      `json:"project_id,omitempty"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StudentListResponse represents a list of students.
type StudentListResponse struct {
	Data []StudentResponse `json:"data"`
}

// ToStudentResponse converts a Student model to StudentResponse DTO.
func ToStudentResponse(s *model.Student) *StudentResponse {
	return &StudentResponse{
		ID:          s.ID,
		CodeNumber:  s.CodeNumber,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		DateOfBirth: s.DateOfBirth,
		Title:       s.Title,
		Description: s.Description,
		ProjectID:   s.ProjectID,
		OwnerID:     s.OwnerID,
		CreatedAt:   s.CreatedAt,
	}
}

// ToStudentListResponse converts student models to a list response.
func ToStudentListResponse(students []*model.Student) *StudentListResponse {
	data := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		data = append(data, *ToStudentResponse(s))
	}
	return &StudentListResponse{Data: data}
}
