package dto

import (
	"time"

	"github.com/campushub/integrity-api/internal/models"
)

// UploadRequest describes the multipart payload for a submission upload. The
// student is taken from the caller's identity, not the form.
type UploadRequest struct {
	AssignmentID uint `form:"assignment_id" validate:"required,gt=0"`
	StudentID    uint `validate:"required,gt=0"`
}

// UploadResult is returned to the uploading student: the best-match score in
// [0,1] and, when a peer set existed, the matched peer's display name.
type UploadResult struct {
	SubmissionID    uint    `json:"submission_id"`
	Score           float64 `json:"score"`
	MatchedPeerName *string `json:"matched_peer_name,omitempty"`
	Flagged         bool    `json:"flagged"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint `query:"assignment_id"`
	StudentID    *uint `query:"student_id"`
	Flagged      *bool `query:"flagged"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                 uint           `json:"id"`
	AssignmentID       uint           `json:"assignment_id"`
	StudentID          uint           `json:"student_id"`
	FileURL            string         `json:"file_url"`
	UploadTime         time.Time      `json:"upload_time"`
	SimilarityScore    float64        `json:"similarity_score"`
	MatchedStudentName string         `json:"matched_student_name,omitempty"`
	Flagged            bool           `json:"flagged"`
	ModelVersion       string         `json:"model_version"`
	Assignment         AssignmentLite `json:"assignment"`
	Student            StudentLite    `json:"student"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:                 model.ID,
		AssignmentID:       model.AssignmentID,
		StudentID:          model.StudentID,
		FileURL:            model.FileURL,
		UploadTime:         model.UploadTime,
		SimilarityScore:    model.SimilarityScore,
		MatchedStudentName: model.MatchedStudentName,
		Flagged:            model.Flagged,
		ModelVersion:       model.ModelVersion,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:       model.Assignment.ID,
			Title:    model.Assignment.Title,
			Deadline: model.Assignment.Deadline,
		}
	}

	if model.Student.ID != 0 {
		response.Student = NewStudentLite(model.Student)
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// NewStudentLite converts a user into its student summary.
func NewStudentLite(user models.User) StudentLite {
	return StudentLite{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// NewStudentLiteSlice converts users into student summaries.
func NewStudentLiteSlice(users []models.User) []StudentLite {
	result := make([]StudentLite, 0, len(users))
	for _, user := range users {
		result = append(result, NewStudentLite(user))
	}

	return result
}
