package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/models"
)

// CourseRepository defines data operations for courses and their rosters.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetByCode(ctx context.Context, code string) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	ListRegisteredStudents(ctx context.Context, courseID uint) ([]models.User, error)
	IsRegistered(ctx context.Context, courseID, studentID uint) (bool, error)
	RegisterStudent(ctx context.Context, courseID, studentID uint) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Faculty").First(&course, id).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) GetByCode(ctx context.Context, code string) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Preload("Faculty").Where("code = ?", code).First(&course).Error; err != nil {
		return models.Course{}, err
	}

	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) ListRegisteredStudents(ctx context.Context, courseID uint) ([]models.User, error) {
	var students []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN course_students ON course_students.user_id = users.id").
		Where("course_students.course_id = ?", courseID).
		Order("users.id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

func (r *courseRepository) IsRegistered(ctx context.Context, courseID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("course_students").
		Where("course_id = ? AND user_id = ?", courseID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *courseRepository) RegisterStudent(ctx context.Context, courseID, studentID uint) error {
	registered, err := r.IsRegistered(ctx, courseID, studentID)
	if err != nil {
		return err
	}
	if registered {
		return nil
	}

	course := models.Course{ID: courseID}
	student := models.User{ID: studentID}

	return r.db.WithContext(ctx).Model(&course).Association("RegisteredStudents").Append(&student)
}
