package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

type fakeAttendanceStore struct {
	existing *models.Attendance
	created  *models.Attendance
	updated  *models.Attendance
}

func (f *fakeAttendanceStore) List(context.Context, models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	return []models.AttendanceDetail{}, 0, nil
}

func (f *fakeAttendanceStore) FindByID(_ context.Context, id string) (*models.Attendance, error) {
	if f.existing != nil && f.existing.ID == id {
		return f.existing, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAttendanceStore) FindByStudentAndDate(_ context.Context, studentID string, date time.Time, period *string) (*models.Attendance, error) {
	if f.existing == nil {
		return nil, sql.ErrNoRows
	}
	if f.existing.StudentID != studentID || !f.existing.Date.Equal(date) {
		return nil, sql.ErrNoRows
	}
	return f.existing, nil
}

func (f *fakeAttendanceStore) Create(_ context.Context, record *models.Attendance) error {
	record.ID = "att-1"
	f.created = record
	return nil
}

func (f *fakeAttendanceStore) Update(_ context.Context, record *models.Attendance) error {
	f.updated = record
	return nil
}

func (f *fakeAttendanceStore) Delete(context.Context, string) error { return nil }

func newAttendanceService(store *fakeAttendanceStore) *AttendanceService {
	students := &fakeStudentIdentity{byID: map[string]*models.Student{
		"stu-1": {ID: "stu-1"},
	}}
	return NewAttendanceService(store, students, NopObserver{}, zap.NewNop())
}

func TestAttendanceRecordCreatesNewSlot(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := newAttendanceService(store)

	record, err := svc.Record(context.Background(), &models.Attendance{
		StudentID: "stu-1",
		Date:      time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	require.NotNil(t, store.created)
	assert.Nil(t, store.updated)
	assert.Equal(t, "att-1", record.ID)
}

func TestAttendanceRecordUpdatesExistingSlot(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	store := &fakeAttendanceStore{existing: &models.Attendance{
		ID:        "att-1",
		StudentID: "stu-1",
		Date:      day,
		Status:    models.AttendanceStatusAbsent,
	}}
	svc := newAttendanceService(store)

	record, err := svc.Record(context.Background(), &models.Attendance{
		StudentID: "stu-1",
		Date:      day,
		Status:    models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	assert.Nil(t, store.created)
	require.NotNil(t, store.updated)
	assert.Equal(t, "att-1", record.ID)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
}

func TestAttendanceRecordRejectsUnknownStudent(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceStore{})

	_, err := svc.Record(context.Background(), &models.Attendance{
		StudentID: "ghost",
		Date:      time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceStatusPresent,
	})
	require.Error(t, err)
}

func TestAttendanceRecordRejectsInvalidStatus(t *testing.T) {
	svc := newAttendanceService(&fakeAttendanceStore{})

	_, err := svc.Record(context.Background(), &models.Attendance{
		StudentID: "stu-1",
		Date:      time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceStatus("vanished"),
	})
	require.Error(t, err)
}
