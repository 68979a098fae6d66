package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

type fakeExportStudents struct {
	students []models.Student
}

func (f *fakeExportStudents) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(f.students) {
		return []models.Student{}, len(f.students), nil
	}
	end := start + filter.PageSize
	if end > len(f.students) {
		end = len(f.students)
	}
	return f.students[start:end], len(f.students), nil
}

type fakeExportGrades struct{}

func (fakeExportGrades) List(context.Context, models.GradeFilter) ([]models.GradeDetail, int, error) {
	return []models.GradeDetail{}, 0, nil
}

type fakeExportAttendance struct{}

func (fakeExportAttendance) List(context.Context, models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	return []models.AttendanceDetail{}, 0, nil
}

type fakeExportFees struct{}

func (fakeExportFees) ListPayments(context.Context, models.FeePaymentFilter) ([]models.FeePayment, int, error) {
	return []models.FeePayment{}, 0, nil
}

type recordingStorage struct {
	saved map[string][]byte
}

func (s *recordingStorage) Save(filename string, data []byte) (string, error) {
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return filename, nil
}

type fakeSigner struct{}

func (fakeSigner) Generate(exportID, relPath string) (string, time.Time, error) {
	return "token-" + exportID, time.Now().Add(time.Hour), nil
}

func (fakeSigner) Parse(token string) (string, string, time.Time, error) {
	id := strings.TrimPrefix(token, "token-")
	return id, id + ".csv", time.Now().Add(time.Hour), nil
}

func newExportService(students *fakeExportStudents, storage *recordingStorage, queue *fakeQueue) *ExportService {
	return NewExportService(
		students,
		fakeExportGrades{},
		fakeExportAttendance{},
		fakeExportFees{},
		storage,
		fakeSigner{},
		queue,
		zap.NewNop(),
	)
}

func sampleStudents(n int) []models.Student {
	students := make([]models.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, models.Student{
			StudentID:      "S-" + strings.Repeat("0", 3) + string(rune('A'+i%26)),
			FirstName:      "Student",
			LastName:       "Example",
			Email:          "student@example.com",
			GradeLevel:     "10",
			Status:         models.StudentStatusActive,
			GPA:            3.2,
			EnrollmentDate: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		})
	}
	return students
}

func TestExportRenderCSVIncludesAllPages(t *testing.T) {
	students := &fakeExportStudents{students: sampleStudents(150)}
	svc := newExportService(students, &recordingStorage{}, &fakeQueue{})

	result, err := svc.Render(context.Background(), ExportStudents, FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(result.Data)), "\n")
	// Header plus every student, across both pages.
	assert.Len(t, lines, 151)
	assert.Equal(t, "student_id,first_name,last_name,email,grade_level,status,gpa,enrollment_date", lines[0])
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))
}

func TestExportRenderRejectsUnknownEntity(t *testing.T) {
	svc := newExportService(&fakeExportStudents{}, &recordingStorage{}, &fakeQueue{})

	_, err := svc.Render(context.Background(), "invoices", FormatCSV)
	require.Error(t, err)
}

func TestExportRenderRejectsUnknownFormat(t *testing.T) {
	svc := newExportService(&fakeExportStudents{}, &recordingStorage{}, &fakeQueue{})

	_, err := svc.Render(context.Background(), ExportStudents, "xml")
	require.Error(t, err)
}

func TestExportRequestAsyncEnqueuesAndSigns(t *testing.T) {
	queue := &fakeQueue{}
	svc := newExportService(&fakeExportStudents{}, &recordingStorage{}, queue)

	ticket, err := svc.RequestAsync(context.Background(), ExportStudents, FormatJSON)
	require.NoError(t, err)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeRenderExport, queue.jobs[0].Type)
	payload, ok := queue.jobs[0].Payload.(ExportJobPayload)
	require.True(t, ok)
	assert.Equal(t, ExportStudents, payload.Entity)
	assert.Equal(t, FormatJSON, payload.Format)
	assert.True(t, strings.HasPrefix(ticket.DownloadURL, "/api/export/download/"))
}

func TestExportHandleRenderJobStoresArtifact(t *testing.T) {
	storage := &recordingStorage{}
	svc := newExportService(&fakeExportStudents{students: sampleStudents(3)}, storage, &fakeQueue{})

	err := svc.HandleRenderJob(context.Background(), ExportJobPayload{
		ExportID: "students-csv-1",
		Entity:   ExportStudents,
		Format:   FormatCSV,
	})
	require.NoError(t, err)
	require.Contains(t, storage.saved, "students-csv-1.csv")
	assert.NotEmpty(t, storage.saved["students-csv-1.csv"])
}
