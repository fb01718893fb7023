package service

import "errors"

// Sentinel errors shared across services. Handlers translate these into HTTP
// statuses; nothing below the handler layer recovers from them silently.
var (
	// ErrAssignmentNotFound indicates the referenced assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrCourseNotFound indicates the referenced course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrSubmissionNotFound indicates the student has no submission for the assignment.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrFileRequired indicates a required file payload was missing.
	ErrFileRequired = errors.New("file is required")
	// ErrFileTooLarge indicates the payload exceeded the configured limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrFileTypeNotAllowed indicates the MIME type is not permitted.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	// ErrPastDeadline indicates the upload arrived after the assignment deadline
	// while late-upload rejection is enabled.
	ErrPastDeadline = errors.New("assignment deadline has passed")
	// ErrNotCourseOwner indicates the acting faculty does not own the course.
	ErrNotCourseOwner = errors.New("caller is not the course faculty")
	// ErrForbidden indicates the caller's role does not permit the action.
	ErrForbidden = errors.New("action not permitted for role")
)
