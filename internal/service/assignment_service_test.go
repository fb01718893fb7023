package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/repository"
)

func newAssignmentService(t *testing.T, db *gorm.DB) AssignmentService {
	t.Helper()

	return NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewCourseRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func TestAssignmentCreateByCourseOwner(t *testing.T) {
	db := newTestDB(t)
	faculty := createUser(t, db, "Dr Grace Hopper", models.RoleFaculty)
	course := createCourse(t, db, "CS101", faculty)

	svc := newAssignmentService(t, db)

	deadline := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	created, err := svc.Create(context.Background(), Actor{ID: faculty.ID, Role: faculty.Role}, dto.AssignmentCreateRequest{
		Title:    "Final Essay",
		CourseID: course.ID,
		Deadline: deadline.Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.Equal(t, "Final Essay", created.Title)
	require.Equal(t, course.ID, created.CourseID)
	require.Equal(t, faculty.ID, created.CreatedByID)
	require.True(t, created.Deadline.Equal(deadline))
}

func TestAssignmentCreateByOtherFaculty(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "Dr Grace Hopper", models.RoleFaculty)
	other := createUser(t, db, "Dr Alan Kay", models.RoleFaculty)
	course := createCourse(t, db, "CS101", owner)

	svc := newAssignmentService(t, db)

	_, err := svc.Create(context.Background(), Actor{ID: other.ID, Role: other.Role}, dto.AssignmentCreateRequest{
		Title:    "Final Essay",
		CourseID: course.ID,
		Deadline: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, ErrNotCourseOwner)
}

func TestAssignmentCreateByStudentForbidden(t *testing.T) {
	db := newTestDB(t)
	faculty := createUser(t, db, "Dr Grace Hopper", models.RoleFaculty)
	student := createUser(t, db, "Alice Chan", models.RoleStudent)
	course := createCourse(t, db, "CS101", faculty, student)

	svc := newAssignmentService(t, db)

	_, err := svc.Create(context.Background(), Actor{ID: student.ID, Role: student.Role}, dto.AssignmentCreateRequest{
		Title:    "Final Essay",
		CourseID: course.ID,
		Deadline: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAssignmentCreateUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	faculty := createUser(t, db, "Dr Grace Hopper", models.RoleFaculty)

	svc := newAssignmentService(t, db)

	_, err := svc.Create(context.Background(), Actor{ID: faculty.ID, Role: faculty.Role}, dto.AssignmentCreateRequest{
		Title:    "Final Essay",
		CourseID: 404,
		Deadline: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestAssignmentCreateInvalidDeadline(t *testing.T) {
	db := newTestDB(t)
	faculty := createUser(t, db, "Dr Grace Hopper", models.RoleFaculty)
	course := createCourse(t, db, "CS101", faculty)

	svc := newAssignmentService(t, db)

	_, err := svc.Create(context.Background(), Actor{ID: faculty.ID, Role: faculty.Role}, dto.AssignmentCreateRequest{
		Title:    "Final Essay",
		CourseID: course.ID,
		Deadline: "next tuesday",
	})
	require.Error(t, err)
}

func TestAssignmentListFilters(t *testing.T) {
	db := newTestDB(t)
	faculty := createUser(t, db, "Dr Grace Hopper", models.RoleFaculty)
	courseOne := createCourse(t, db, "CS101", faculty)
	courseTwo := createCourse(t, db, "CS202", faculty)

	createAssignment(t, db, courseOne, time.Now().Add(24*time.Hour))
	createAssignment(t, db, courseTwo, time.Now().Add(48*time.Hour))

	svc := newAssignmentService(t, db)

	all, err := svc.List(context.Background(), dto.AssignmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	scoped, err := svc.List(context.Background(), dto.AssignmentFilter{CourseID: &courseOne.ID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, courseOne.ID, scoped[0].CourseID)
}
