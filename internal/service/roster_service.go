package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/repository"
	"github.com/campushub/integrity-api/pkg/roster"
)

// RosterService imports course rosters from CSV uploads. Unknown emails
// become student accounts; course membership stays duplicate-free. The CSV
// itself is consumed during the request and never retained.
type RosterService interface {
	Import(ctx context.Context, actor Actor, courseID uint, file *multipart.FileHeader) (dto.RosterImportResponse, error)
}

type rosterService struct {
	courses repository.CourseRepository
	users   repository.UserRepository
	logger  zerolog.Logger
}

// NewRosterService constructs a RosterService instance.
func NewRosterService(courseRepo repository.CourseRepository, userRepo repository.UserRepository, logger zerolog.Logger) RosterService {
	return &rosterService{
		courses: courseRepo,
		users:   userRepo,
		logger:  logger.With().Str("component", "roster_service").Logger(),
	}
}

func (s *rosterService) Import(ctx context.Context, actor Actor, courseID uint, file *multipart.FileHeader) (dto.RosterImportResponse, error) {
	if file == nil {
		return dto.RosterImportResponse{}, ErrFileRequired
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RosterImportResponse{}, ErrCourseNotFound
		}
		return dto.RosterImportResponse{}, err
	}

	owns := course.FacultyID == actor.ID
	if !actor.Role.Can(models.ActionImportRoster, owns) {
		if actor.Role == models.RoleFaculty {
			return dto.RosterImportResponse{}, ErrNotCourseOwner
		}
		return dto.RosterImportResponse{}, ErrForbidden
	}

	reader, err := file.Open()
	if err != nil {
		return dto.RosterImportResponse{}, err
	}
	defer reader.Close()

	response := dto.RosterImportResponse{CourseID: course.ID}

	scanner := roster.NewScanner(reader)
	for scanner.Next() {
		row := scanner.Row()

		student, err := s.users.GetByEmail(ctx, row.Email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.RosterImportResponse{}, err
			}

			student = models.User{
				Name:  row.Name,
				Email: row.Email,
				Role:  models.RoleStudent,
			}
			if err := s.users.Create(ctx, &student); err != nil {
				return dto.RosterImportResponse{}, err
			}
			response.Created++
		}

		registered, err := s.courses.IsRegistered(ctx, course.ID, student.ID)
		if err != nil {
			return dto.RosterImportResponse{}, err
		}
		if registered {
			response.AlreadyRegistered++
			continue
		}

		if err := s.courses.RegisterStudent(ctx, course.ID, student.ID); err != nil {
			return dto.RosterImportResponse{}, err
		}
		response.Enrolled++
	}
	if err := scanner.Err(); err != nil {
		return dto.RosterImportResponse{}, err
	}

	s.logger.Info().
		Uint("course_id", course.ID).
		Int("created", response.Created).
		Int("enrolled", response.Enrolled).
		Msg("roster imported")

	return response, nil
}
