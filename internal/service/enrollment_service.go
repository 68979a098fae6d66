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

// EnrollmentStore is the persistence surface for enrollment writes and reads.
type EnrollmentStore interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindActive(ctx context.Context, studentID, subjectID string) (*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	CountActiveBySubject(ctx context.Context, subjectID string) (int, error)
}

// SubjectReader resolves subjects for enrollment checks.
type SubjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// EnrollmentService implements enrollment lifecycle operations.
type EnrollmentService struct {
	enrollments EnrollmentStore
	students    StudentIdentityReader
	subjects    SubjectReader
	observer    EntityObserver
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(enrollments EnrollmentStore, students StudentIdentityReader, subjects SubjectReader, observer EntityObserver, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, students: students, subjects: subjects, observer: observer, logger: logger, now: time.Now}
}

// List returns enrollments matching the filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment listing failed")
	}
	return enrollments, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// Enroll registers a student into a subject. The subject must be active and
// under its capacity cap, and the student must not already hold an active
// enrollment in it.
func (s *EnrollmentService) Enroll(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, error) {
	if _, err := s.students.FindByID(ctx, enrollment.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}
	subject, err := s.subjects.FindByID(ctx, enrollment.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "subject not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject lookup failed")
	}
	if !subject.IsActive {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "subject is not active")
	}

	if _, err := s.enrollments.FindActive(ctx, enrollment.StudentID, enrollment.SubjectID); err == nil {
		return nil, apperrors.Clone(apperrors.ErrConflict, "student already enrolled in subject")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment lookup failed")
	}

	if subject.MaxStudents > 0 {
		count, err := s.enrollments.CountActiveBySubject(ctx, enrollment.SubjectID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "capacity check failed")
		}
		if count >= subject.MaxStudents {
			return nil, apperrors.Clone(apperrors.ErrConflict, "subject is at capacity")
		}
	}

	enrollment.Status = models.EnrollmentStatusEnrolled
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = s.now().UTC()
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment creation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "enrollment", EntityID: enrollment.ID, Action: "created"})
	return enrollment, nil
}

// UpdateStatus transitions an enrollment's lifecycle state.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	if !status.Valid() {
		return apperrors.WithDetails(apperrors.ErrValidation, "invalid status")
	}
	if _, err := s.enrollments.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment lookup failed")
	}
	if err := s.enrollments.UpdateStatus(ctx, id, status); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "enrollment", EntityID: id, Action: "status_changed"})
	return nil
}
