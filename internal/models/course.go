package models

import "time"

// Course groups assignments under a unique code and an owning faculty member.
// Registered students are kept duplicate-free through the join table.
type Course struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Code               string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name               string    `gorm:"size:255;not null" json:"name"`
	FacultyID          uint      `gorm:"not null" json:"faculty_id"`
	Faculty            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"faculty"`
	RegisteredStudents []User    `gorm:"many2many:course_students" json:"registered_students,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
