package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/models"
)

// memoryStore keeps uploaded artifacts in a map so tests can round-trip the
// upload/fetch cycle without Cloudinary.
type memoryStore struct {
	objects map[string][]byte
	fail    map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte), fail: make(map[string]bool)}
}

func (s *memoryStore) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	url := "https://cdn.test/" + name
	s.objects[url] = data
	return url, nil
}

func (s *memoryStore) Fetch(_ context.Context, ref string) ([]byte, error) {
	if s.fail[ref] {
		return nil, fmt.Errorf("fetch %s: unavailable", ref)
	}

	data, ok := s.objects[ref]
	if !ok {
		return nil, fmt.Errorf("fetch %s: not found", ref)
	}
	return data, nil
}

// textGenerator embeds by looking the extracted text up in a fixed table, so
// tests control every similarity exactly.
type textGenerator struct {
	vectors map[string][]float32
}

func (g *textGenerator) Embed(_ context.Context, text string) ([]float32, error) {
	if vector, ok := g.vectors[text]; ok {
		return vector, nil
	}
	return nil, fmt.Errorf("no vector for %q", text)
}

func (g *textGenerator) ModelVersion() string {
	return "test-vectors-v1"
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Assignment{}, &models.Submission{}))

	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.edu",
		Role:  role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, code string, faculty models.User, students ...models.User) models.Course {
	t.Helper()

	course := models.Course{
		Code:      code,
		Name:      "Course " + code,
		FacultyID: faculty.ID,
	}
	require.NoError(t, db.Create(&course).Error)
	for i := range students {
		require.NoError(t, db.Model(&course).Association("RegisteredStudents").Append(&students[i]))
	}
	return course
}

func createAssignment(t *testing.T, db *gorm.DB, course models.Course, deadline time.Time) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		Title:       "Essay",
		CourseID:    course.ID,
		Deadline:    deadline,
		CreatedByID: course.FacultyID,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
