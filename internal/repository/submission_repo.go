package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Flagged      *bool
}

// SubmissionRepository defines data operations for submissions. Rows are
// created once per upload and never updated.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	// GetLatest returns the newest submission for a (student, assignment) pair.
	GetLatest(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	// ListLatestPeers returns, for every other student with work on the
	// assignment, that student's newest submission, ordered by upload time.
	ListLatestPeers(ctx context.Context, assignmentID, excludeStudentID uint) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Flagged != nil {
		query = query.Where("flagged = ?", *filter.Flagged)
	}

	var submissions []models.Submission
	if err := query.Order("upload_time DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetLatest(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Order("upload_time DESC").
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListLatestPeers(ctx context.Context, assignmentID, excludeStudentID uint) ([]models.Submission, error) {
	latestIDs := r.db.Model(&models.Submission{}).
		Select("MAX(id)").
		Where("assignment_id = ?", assignmentID).
		Group("student_id")

	var submissions []models.Submission
	err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id <> ?", excludeStudentID).
		Where("id IN (?)", latestIDs).
		Order("upload_time ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}
