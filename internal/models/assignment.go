package models

import "time"

// Assignment is a piece of coursework with a fixed deadline. The deadline is
// set at creation and has no update path.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	CourseID    uint      `gorm:"not null" json:"course_id"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	Deadline    time.Time `gorm:"not null" json:"deadline"`
	CreatedByID uint      `gorm:"not null" json:"created_by_id"`
	CreatedBy   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsPastDue returns true when the deadline has already passed at the given
// reference time. A submission arriving exactly at the deadline is on time.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.Deadline)
}
