package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/repository"
)

// LifecycleService classifies every registered student of an assignment's
// course into exactly one of submitted, pending or missed, relative to a
// reference time.
type LifecycleService interface {
	// Status classifies for the given reference time; a nil reference means
	// "now" and makes the result cacheable for a short TTL.
	Status(ctx context.Context, assignmentID uint, reference *time.Time) (dto.AssignmentStatusResponse, error)
}

type lifecycleService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLifecycleService builds the lifecycle tracker.
func NewLifecycleService(
	assignments repository.AssignmentRepository,
	courses repository.CourseRepository,
	submissions repository.SubmissionRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) LifecycleService {
	return &lifecycleService{
		assignments: assignments,
		courses:     courses,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "lifecycle_service").Logger(),
		now:         time.Now,
	}
}

func (s *lifecycleService) Status(ctx context.Context, assignmentID uint, reference *time.Time) (dto.AssignmentStatusResponse, error) {
	cacheKey := fmt.Sprintf("lifecycle:assignment:%d", assignmentID)

	// Explicit reference times bypass the cache: the cached entry is only
	// valid for the "now" reading it was built with.
	if reference == nil && s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AssignmentStatusResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("assignment_id", assignmentID).Msg("lifecycle cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read lifecycle cache")
		}
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentStatusResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentStatusResponse{}, err
	}

	registered, err := s.courses.ListRegisteredStudents(ctx, assignment.CourseID)
	if err != nil {
		return dto.AssignmentStatusResponse{}, err
	}

	filter := repository.SubmissionFilter{AssignmentID: &assignmentID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.AssignmentStatusResponse{}, err
	}

	referenceTime := s.now()
	if reference != nil {
		referenceTime = *reference
	}

	submitted, pending, missed := classify(registered, submissions, assignment.Deadline, referenceTime)

	response := dto.AssignmentStatusResponse{
		AssignmentID:  assignment.ID,
		CourseID:      assignment.CourseID,
		Deadline:      assignment.Deadline,
		ReferenceTime: referenceTime,
		Submitted:     dto.NewStudentLiteSlice(submitted),
		Pending:       dto.NewStudentLiteSlice(pending),
		Missed:        dto.NewStudentLiteSlice(missed),
	}

	if reference == nil && s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store lifecycle cache")
			}
		}
	}

	return response, nil
}

// classify partitions the registered students: any submission row for the
// (student, assignment) pair means submitted, a terminal state; everyone else
// is pending until the deadline passes, then missed. Each student lands in
// exactly one group and nobody is dropped.
func classify(registered []models.User, submissions []models.Submission, deadline, reference time.Time) (submitted, pending, missed []models.User) {
	hasSubmission := make(map[uint]struct{}, len(submissions))
	for _, submission := range submissions {
		hasSubmission[submission.StudentID] = struct{}{}
	}

	pastDeadline := reference.After(deadline)

	seen := make(map[uint]struct{}, len(registered))
	for _, student := range registered {
		if _, duplicate := seen[student.ID]; duplicate {
			continue
		}
		seen[student.ID] = struct{}{}

		switch {
		case hasSubmissionFor(hasSubmission, student.ID):
			submitted = append(submitted, student)
		case pastDeadline:
			missed = append(missed, student)
		default:
			pending = append(pending, student)
		}
	}

	return submitted, pending, missed
}

func hasSubmissionFor(index map[uint]struct{}, studentID uint) bool {
	_, ok := index[studentID]
	return ok
}
