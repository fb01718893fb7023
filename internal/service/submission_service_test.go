package service

import (
	"archive/zip"
	"bytes"
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
	"github.com/campushub/integrity-api/internal/similarity"
	"github.com/campushub/integrity-api/pkg/extractor"
)

type submissionFixture struct {
	db      *gorm.DB
	store   *memoryStore
	service SubmissionService
	course  models.Course
	student models.User
	peer    models.User
}

func newSubmissionFixture(t *testing.T, vectors map[string][]float32, cfg SubmissionConfig) *submissionFixture {
	t.Helper()

	db := newTestDB(t)
	faculty := createUser(t, db, "Dr Grace Hopper", models.RoleFaculty)
	student := createUser(t, db, "Alice Chan", models.RoleStudent)
	peer := createUser(t, db, "Bob Osei", models.RoleStudent)
	course := createCourse(t, db, "CS101", faculty, student, peer)

	store := newMemoryStore()
	generator := &textGenerator{vectors: vectors}
	engine := similarity.NewEngine(generator, zerolog.Nop())

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewAssignmentRepository(db),
		engine,
		generator,
		extractor.New(zerolog.Nop()),
		store,
		validator.New(validator.WithRequiredStructEnabled()),
		cfg,
		zerolog.Nop(),
	)

	return &submissionFixture{
		db:      db,
		store:   store,
		service: svc,
		course:  course,
		student: student,
		peer:    peer,
	}
}

func (f *submissionFixture) seedPeerSubmission(t *testing.T, assignment models.Assignment, text string, uploadTime time.Time) models.Submission {
	t.Helper()

	url := "https://cdn.test/peer-" + uploadTime.Format("150405") + ".txt"
	f.store.objects[url] = []byte(text)

	submission := models.Submission{
		StudentID:    f.peer.ID,
		CourseID:     assignment.CourseID,
		AssignmentID: assignment.ID,
		FileURL:      url,
		UploadTime:   uploadTime,
		ModelVersion: "test-vectors-v1",
	}
	require.NoError(t, f.db.Create(&submission).Error)
	return submission
}

func TestSubmissionUploadZeroPeers(t *testing.T) {
	fixture := newSubmissionFixture(t, map[string][]float32{
		"my essay": {1, 0},
	}, SubmissionConfig{})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))

	file := buildFileHeader(t, "essay.txt", []byte("my essay"))
	result, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
		AssignmentID: assignment.ID,
		StudentID:    fixture.student.ID,
	}, file)
	require.NoError(t, err)

	require.Equal(t, 0.0, result.Score)
	require.Nil(t, result.MatchedPeerName)
	require.False(t, result.Flagged)

	var stored models.Submission
	require.NoError(t, fixture.db.First(&stored, result.SubmissionID).Error)
	require.Equal(t, 0.0, stored.SimilarityScore)
	require.Nil(t, stored.MatchedStudentID)
	require.NotEmpty(t, stored.FileURL)
	require.Equal(t, "test-vectors-v1", stored.ModelVersion)
}

func TestSubmissionUploadFlagsHighSimilarity(t *testing.T) {
	fixture := newSubmissionFixture(t, map[string][]float32{
		"my essay":   {1, 0},
		"peer essay": {1, 0},
	}, SubmissionConfig{FlagThreshold: 0.8})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))
	fixture.seedPeerSubmission(t, assignment, "peer essay", time.Now().Add(-time.Hour))

	file := buildFileHeader(t, "essay.txt", []byte("my essay"))
	result, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
		AssignmentID: assignment.ID,
		StudentID:    fixture.student.ID,
	}, file)
	require.NoError(t, err)

	require.InDelta(t, 1.0, result.Score, 1e-9)
	require.True(t, result.Flagged)
	require.NotNil(t, result.MatchedPeerName)
	require.Equal(t, fixture.peer.Name, *result.MatchedPeerName)

	var stored models.Submission
	require.NoError(t, fixture.db.First(&stored, result.SubmissionID).Error)
	require.NotNil(t, stored.MatchedStudentID)
	require.Equal(t, fixture.peer.ID, *stored.MatchedStudentID)
}

func TestSubmissionUploadComparesAgainstLatestPeerWork(t *testing.T) {
	fixture := newSubmissionFixture(t, map[string][]float32{
		"my essay":       {1, 0},
		"old peer copy":  {1, 0},
		"new peer essay": {0, 1},
	}, SubmissionConfig{FlagThreshold: 0.8})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))

	// The peer resubmitted: only the newest row takes part in comparisons.
	fixture.seedPeerSubmission(t, assignment, "old peer copy", time.Now().Add(-2*time.Hour))
	fixture.seedPeerSubmission(t, assignment, "new peer essay", time.Now().Add(-time.Hour))

	file := buildFileHeader(t, "essay.txt", []byte("my essay"))
	result, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
		AssignmentID: assignment.ID,
		StudentID:    fixture.student.ID,
	}, file)
	require.NoError(t, err)

	require.InDelta(t, 0.0, result.Score, 1e-9)
	require.False(t, result.Flagged)
}

func TestSubmissionUploadResubmissionAppends(t *testing.T) {
	fixture := newSubmissionFixture(t, map[string][]float32{
		"my essay": {1, 0},
	}, SubmissionConfig{})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))

	for i := 0; i < 2; i++ {
		file := buildFileHeader(t, "essay.txt", []byte("my essay"))
		_, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
			AssignmentID: assignment.ID,
			StudentID:    fixture.student.ID,
		}, file)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, fixture.db.Model(&models.Submission{}).
		Where("student_id = ? AND assignment_id = ?", fixture.student.ID, assignment.ID).
		Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestSubmissionUploadUnreadableTargetPersistsNothing(t *testing.T) {
	fixture := newSubmissionFixture(t, nil, SubmissionConfig{})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))

	// A zip archive without the word document passes the type gate but fails
	// extraction.
	buf := &bytes.Buffer{}
	writer := zip.NewWriter(buf)
	entry, err := writer.Create("unrelated.bin")
	require.NoError(t, err)
	_, err = entry.Write([]byte{0x00, 0x01, 0x02})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	file := buildFileHeader(t, "essay.docx", buf.Bytes())
	_, err = fixture.service.Upload(context.Background(), dto.UploadRequest{
		AssignmentID: assignment.ID,
		StudentID:    fixture.student.ID,
	}, file)

	var parseErr *extractor.ParseError
	require.ErrorAs(t, err, &parseErr)

	var count int64
	require.NoError(t, fixture.db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
	require.Empty(t, fixture.store.objects)
}

func TestSubmissionUploadPastDeadlinePolicy(t *testing.T) {
	t.Run("rejected when enabled", func(t *testing.T) {
		fixture := newSubmissionFixture(t, map[string][]float32{
			"my essay": {1, 0},
		}, SubmissionConfig{RejectPastDue: true})
		assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(-time.Hour))

		file := buildFileHeader(t, "essay.txt", []byte("my essay"))
		_, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
			AssignmentID: assignment.ID,
			StudentID:    fixture.student.ID,
		}, file)
		require.ErrorIs(t, err, ErrPastDeadline)
	})

	t.Run("accepted by default", func(t *testing.T) {
		fixture := newSubmissionFixture(t, map[string][]float32{
			"my essay": {1, 0},
		}, SubmissionConfig{})
		assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(-time.Hour))

		file := buildFileHeader(t, "essay.txt", []byte("my essay"))
		_, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
			AssignmentID: assignment.ID,
			StudentID:    fixture.student.ID,
		}, file)
		require.NoError(t, err)
	})
}

func TestSubmissionUploadRejectsOversizedFile(t *testing.T) {
	fixture := newSubmissionFixture(t, nil, SubmissionConfig{MaxUploadBytes: 16})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))

	file := buildFileHeader(t, "essay.txt", bytes.Repeat([]byte("a"), 64))
	_, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
		AssignmentID: assignment.ID,
		StudentID:    fixture.student.ID,
	}, file)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSubmissionUploadUnknownAssignment(t *testing.T) {
	fixture := newSubmissionFixture(t, nil, SubmissionConfig{})

	file := buildFileHeader(t, "essay.txt", []byte("my essay"))
	_, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
		AssignmentID: 999,
		StudentID:    fixture.student.ID,
	}, file)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmissionUploadMissingFile(t *testing.T) {
	fixture := newSubmissionFixture(t, nil, SubmissionConfig{})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))

	_, err := fixture.service.Upload(context.Background(), dto.UploadRequest{
		AssignmentID: assignment.ID,
		StudentID:    fixture.student.ID,
	}, nil)
	require.ErrorIs(t, err, ErrFileRequired)
}

func TestSubmissionListFilters(t *testing.T) {
	fixture := newSubmissionFixture(t, nil, SubmissionConfig{})
	assignment := createAssignment(t, fixture.db, fixture.course, time.Now().Add(24*time.Hour))

	flaggedRow := models.Submission{
		StudentID:    fixture.student.ID,
		CourseID:     assignment.CourseID,
		AssignmentID: assignment.ID,
		FileURL:      "https://cdn.test/a.txt",
		UploadTime:   time.Now().Add(-time.Hour),
		Flagged:      true,
		ModelVersion: "test-vectors-v1",
	}
	cleanRow := models.Submission{
		StudentID:    fixture.peer.ID,
		CourseID:     assignment.CourseID,
		AssignmentID: assignment.ID,
		FileURL:      "https://cdn.test/b.txt",
		UploadTime:   time.Now(),
		ModelVersion: "test-vectors-v1",
	}
	require.NoError(t, fixture.db.Create(&flaggedRow).Error)
	require.NoError(t, fixture.db.Create(&cleanRow).Error)

	flagged := true
	listed, err := fixture.service.List(context.Background(), dto.SubmissionFilter{
		AssignmentID: &assignment.ID,
		Flagged:      &flagged,
	})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, flaggedRow.ID, listed[0].ID)
}
