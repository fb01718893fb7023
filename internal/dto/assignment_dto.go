package dto

import (
	"time"

	"github.com/campushub/integrity-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
// The deadline is fixed at creation; there is no update path.
type AssignmentCreateRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	CourseID uint   `json:"course_id" validate:"required,gt=0"`
	Deadline string `json:"deadline" validate:"required"`
}

// AssignmentFilter describes query string filters for listing assignments.
type AssignmentFilter struct {
	CourseID    *uint `query:"course_id"`
	CreatedByID *uint `query:"created_by_id"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	CourseID    uint      `json:"course_id"`
	CourseCode  string    `json:"course_code,omitempty"`
	CourseName  string    `json:"course_name,omitempty"`
	Deadline    time.Time `json:"deadline"`
	CreatedByID uint      `json:"created_by_id"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		CourseID:    model.CourseID,
		Deadline:    model.Deadline,
		CreatedByID: model.CreatedByID,
		CreatedAt:   model.CreatedAt,
	}

	if model.Course.ID != 0 {
		response.CourseCode = model.Course.Code
		response.CourseName = model.Course.Name
	}

	if model.CreatedBy.ID != 0 {
		response.CreatedBy = model.CreatedBy.Name
	}

	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(models []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(models))
	for _, assignment := range models {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
