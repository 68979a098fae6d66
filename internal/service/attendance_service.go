package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

// AttendanceStore is the persistence surface for attendance writes and reads.
type AttendanceStore interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	FindByStudentAndDate(ctx context.Context, studentID string, date time.Time, period *string) (*models.Attendance, error)
	Create(ctx context.Context, record *models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// AttendanceService implements attendance CRUD. One authoritative record per
// student per date per period: a second write for the same slot updates the
// existing row instead of duplicating it.
type AttendanceService struct {
	attendance AttendanceStore
	students   StudentIdentityReader
	observer   EntityObserver
	logger     *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance AttendanceStore, students StudentIdentityReader, observer EntityObserver, logger *zap.Logger) *AttendanceService {
	return &AttendanceService{attendance: attendance, students: students, observer: observer, logger: logger}
}

// List returns attendance records matching the filter.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, *models.Pagination, error) {
	records, total, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance listing failed")
	}
	return records, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// Record upserts the attendance slot for a student, date and period.
func (s *AttendanceService) Record(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	if !record.Status.Valid() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "invalid status")
	}
	if record.Date.IsZero() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "date is required")
	}
	if _, err := s.students.FindByID(ctx, record.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}

	existing, err := s.attendance.FindByStudentAndDate(ctx, record.StudentID, record.Date, record.Period)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance lookup failed")
	}

	if existing != nil {
		existing.Status = record.Status
		existing.Notes = record.Notes
		existing.RecordedBy = record.RecordedBy
		if err := s.attendance.Update(ctx, existing); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance update failed")
		}
		s.observer.Notify(ctx, EntityEvent{Entity: "attendance", EntityID: existing.ID, Action: "updated"})
		return existing, nil
	}

	if err := s.attendance.Create(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance creation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "attendance", EntityID: record.ID, Action: "created"})
	return record, nil
}

// Update modifies an attendance record by id.
func (s *AttendanceService) Update(ctx context.Context, id string, status models.AttendanceStatus, notes *string) (*models.Attendance, error) {
	if !status.Valid() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "invalid status")
	}
	record, err := s.attendance.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance lookup failed")
	}
	record.Status = status
	if notes != nil {
		record.Notes = notes
	}
	if err := s.attendance.Update(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "attendance", EntityID: id, Action: "updated"})
	return record, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if _, err := s.attendance.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance lookup failed")
	}
	if err := s.attendance.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance deletion failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "attendance", EntityID: id, Action: "deleted"})
	return nil
}
