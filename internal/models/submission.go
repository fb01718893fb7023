package models

import (
	"errors"
	"time"
)

// Submission records one upload event. Rows are written exactly once, with
// their similarity fields set by the same write, and never mutated afterwards.
// A student may have multiple rows per assignment; the newest one is the
// student's current work.
type Submission struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	StudentID          uint       `gorm:"not null;index" json:"student_id"`
	Student            User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	CourseID           uint       `gorm:"not null" json:"course_id"`
	AssignmentID       uint       `gorm:"not null;index" json:"assignment_id"`
	Assignment         Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	FileURL            string     `gorm:"size:512;not null" json:"file_url"`
	UploadTime         time.Time  `gorm:"not null" json:"upload_time"`
	SimilarityScore    float64    `gorm:"not null" json:"similarity_score"`
	MatchedStudentID   *uint      `json:"matched_student_id"`
	MatchedStudentName string     `gorm:"size:255" json:"matched_student_name"`
	Flagged            bool       `gorm:"not null" json:"flagged"`
	ModelVersion       string     `gorm:"size:128;not null" json:"model_version"`
	CreatedAt          time.Time  `json:"created_at"`
}

var (
	// ErrScoreOutOfRange indicates a similarity score outside the unit interval.
	ErrScoreOutOfRange = errors.New("similarity score must be within [0,1]")
	// ErrCourseMismatch indicates the submission's course differs from its assignment's course.
	ErrCourseMismatch = errors.New("submission course must match assignment course")
)

// Validate checks the invariants that must hold before a submission row is
// persisted. assignment must be the submission's assignment record.
func (s Submission) Validate(assignment Assignment) error {
	if s.SimilarityScore < 0 || s.SimilarityScore > 1 {
		return ErrScoreOutOfRange
	}
	if s.AssignmentID != assignment.ID || s.CourseID != assignment.CourseID {
		return ErrCourseMismatch
	}
	return nil
}
