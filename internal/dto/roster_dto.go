package dto

// RosterImportResponse summarizes a roster CSV import.
type RosterImportResponse struct {
	CourseID uint `json:"course_id"`
	// Created counts student accounts created for previously unknown emails.
	Created int `json:"created"`
	// Enrolled counts students newly registered to the course.
	Enrolled int `json:"enrolled"`
	// AlreadyRegistered counts rows whose student was registered before.
	AlreadyRegistered int `json:"already_registered"`
}
