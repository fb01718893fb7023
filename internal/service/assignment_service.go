package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/repository"
)

// Actor identifies the authenticated caller for ownership-aware decisions.
type Actor struct {
	ID   uint
	Role models.Role
}

// AssignmentService manages assignment creation and listing.
type AssignmentService interface {
	List(ctx context.Context, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, courseRepo repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		courses:     courseRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, filter dto.AssignmentFilter) ([]dto.AssignmentResponse, error) {
	repoFilter := repository.AssignmentFilter{
		CourseID:    filter.CourseID,
		CreatedByID: filter.CreatedByID,
	}

	assignments, err := s.assignments.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

// Create registers a new assignment. Only the course's assigned faculty may
// create assignments for it; the decision goes through Role.Can so ownership
// is part of the authorization input, not an ad hoc string check.
func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	deadline, err := time.Parse(time.RFC3339, payload.Deadline)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid deadline: %w", err)
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrCourseNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	owns := course.FacultyID == actor.ID
	if !actor.Role.Can(models.ActionCreateAssignment, owns) {
		if actor.Role == models.RoleFaculty {
			return dto.AssignmentResponse{}, ErrNotCourseOwner
		}
		return dto.AssignmentResponse{}, ErrForbidden
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		CourseID:    course.ID,
		Deadline:    deadline,
		CreatedByID: actor.ID,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	created, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", created.ID).Uint("course_id", course.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(created), nil
}
