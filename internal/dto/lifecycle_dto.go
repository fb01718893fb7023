package dto

import "time"

// AssignmentStatusResponse partitions every registered student of the
// assignment's course into exactly one of submitted, pending or missed,
// relative to the reference time.
type AssignmentStatusResponse struct {
	AssignmentID  uint          `json:"assignment_id"`
	CourseID      uint          `json:"course_id"`
	Deadline      time.Time     `json:"deadline"`
	ReferenceTime time.Time     `json:"reference_time"`
	Submitted     []StudentLite `json:"submitted"`
	Pending       []StudentLite `json:"pending"`
	Missed        []StudentLite `json:"missed"`
}
