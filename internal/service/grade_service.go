package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/metric"
	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
	"github.com/noah-isme/campus-admin-api/pkg/jobs"
)

// JobTypeRecomputeGPA labels queued GPA refresh work.
const JobTypeRecomputeGPA = "recompute_gpa"

// GradeStore is the persistence surface for grade writes and reads.
type GradeStore interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

// Enqueuer pushes background jobs.
type Enqueuer interface {
	Enqueue(job jobs.Job) error
}

// GradeService implements grade CRUD with derived-cache maintenance. Every
// successful write enqueues a GPA recompute for the affected student; the
// write itself never waits on, or fails with, the recompute.
type GradeService struct {
	grades   GradeStore
	students StudentIdentityReader
	queue    Enqueuer
	observer EntityObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewGradeService constructs a GradeService.
func NewGradeService(grades GradeStore, students StudentIdentityReader, queue Enqueuer, observer EntityObserver, logger *zap.Logger) *GradeService {
	return &GradeService{grades: grades, students: students, queue: queue, observer: observer, logger: logger, now: time.Now}
}

// List returns grades matching the filter.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, *models.Pagination, error) {
	grades, total, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade listing failed")
	}
	return grades, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// Get fetches a single grade.
func (s *GradeService) Get(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade lookup failed")
	}
	return grade, nil
}

// Create records a new grade. The stored letter is the deterministic mapping
// of the numeric value unless the caller supplies a valid fine-scale letter.
func (s *GradeService) Create(ctx context.Context, grade *models.Grade) (*models.Grade, error) {
	if err := s.validate(grade); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, grade.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}

	grade.LetterGrade = metric.ResolveLetter(grade.GradeValue, grade.LetterGrade)
	if grade.DateRecorded.IsZero() {
		grade.DateRecorded = s.now().UTC()
	}
	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade creation failed")
	}

	s.afterWrite(ctx, grade.ID, grade.StudentID, "created")
	return grade, nil
}

// Update modifies an existing grade and refreshes the stored letter.
func (s *GradeService) Update(ctx context.Context, id string, updated *models.Grade) (*models.Grade, error) {
	current, err := s.grades.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade lookup failed")
	}
	if err := s.validate(updated); err != nil {
		return nil, err
	}

	updated.ID = current.ID
	updated.StudentID = current.StudentID
	updated.SubjectID = current.SubjectID
	updated.LetterGrade = metric.ResolveLetter(updated.GradeValue, updated.LetterGrade)
	if updated.DateRecorded.IsZero() {
		updated.DateRecorded = current.DateRecorded
	}
	if err := s.grades.Update(ctx, updated); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade update failed")
	}

	s.afterWrite(ctx, id, current.StudentID, "updated")
	return updated, nil
}

// Delete removes a grade and refreshes the owning student's GPA.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	current, err := s.grades.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade lookup failed")
	}
	if err := s.grades.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade deletion failed")
	}
	s.afterWrite(ctx, id, current.StudentID, "deleted")
	return nil
}

func (s *GradeService) validate(grade *models.Grade) error {
	var details []string
	if grade.GradeValue < 0 || grade.GradeValue > 100 {
		details = append(details, "grade_value must be between 0 and 100")
	}
	if !grade.GradeType.Valid() {
		details = append(details, "invalid grade_type")
	}
	if grade.Weight <= 0 {
		grade.Weight = 1
	}
	if len(details) > 0 {
		return apperrors.WithDetails(apperrors.ErrValidation, details...)
	}
	return nil
}

// afterWrite runs the post-commit hooks. The recompute runs on the queue so
// a cache failure surfaces in logs instead of rolling back the grade write.
func (s *GradeService) afterWrite(ctx context.Context, gradeID, studentID, action string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeRecomputeGPA,
		Payload: studentID,
	})
	if err != nil {
		s.logger.Warn("failed to enqueue gpa recompute",
			zap.String("student_id", studentID), zap.Error(err))
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "grade", EntityID: gradeID, Action: action})
}
