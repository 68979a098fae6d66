package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

// TeacherStore is the persistence surface for teacher profiles and subject
// assignments.
type TeacherStore interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	ListSubjectIDs(ctx context.Context, teacherID string) ([]string, error)
	AssignSubject(ctx context.Context, teacherID, subjectID string) error
	UnassignSubject(ctx context.Context, teacherID, subjectID string) error
}

// TeacherService implements teacher CRUD and subject assignment.
type TeacherService struct {
	teachers TeacherStore
	subjects SubjectReader
	observer EntityObserver
	logger   *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(teachers TeacherStore, subjects SubjectReader, observer EntityObserver, logger *zap.Logger) *TeacherService {
	return &TeacherService{teachers: teachers, subjects: subjects, observer: observer, logger: logger}
}

// List returns teachers matching the filter.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.teachers.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "teacher listing failed")
	}
	return teachers, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// Get fetches a teacher along with their assigned subject ids.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, []string, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.ErrNotFound
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "teacher lookup failed")
	}
	subjectIDs, err := s.teachers.ListSubjectIDs(ctx, id)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "assignment lookup failed")
	}
	return teacher, subjectIDs, nil
}

// Create registers a new teacher profile.
func (s *TeacherService) Create(ctx context.Context, teacher *models.Teacher) (*models.Teacher, error) {
	if teacher.TeacherID == "" || teacher.FirstName == "" || teacher.LastName == "" {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "teacher_id, first_name and last_name are required")
	}
	teacher.Active = true
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "teacher creation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "teacher", EntityID: teacher.ID, Action: "created"})
	return teacher, nil
}

// Update modifies an existing teacher profile.
func (s *TeacherService) Update(ctx context.Context, id string, updated *models.Teacher) (*models.Teacher, error) {
	current, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "teacher lookup failed")
	}
	updated.ID = current.ID
	if err := s.teachers.Update(ctx, updated); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "teacher update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "teacher", EntityID: id, Action: "updated"})
	return updated, nil
}

// AssignSubject links a teacher to a subject, widening the teacher's
// student reachability to that subject's active enrollments.
func (s *TeacherService) AssignSubject(ctx context.Context, teacherID, subjectID string) error {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.Clone(apperrors.ErrNotFound, "teacher not found")
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "teacher lookup failed")
	}
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.Clone(apperrors.ErrNotFound, "subject not found")
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject lookup failed")
	}
	existing, err := s.teachers.ListSubjectIDs(ctx, teacherID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "assignment lookup failed")
	}
	for _, id := range existing {
		if id == subjectID {
			return apperrors.Clone(apperrors.ErrConflict, "subject already assigned")
		}
	}
	if err := s.teachers.AssignSubject(ctx, teacherID, subjectID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "assignment failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "subject_teacher", EntityID: teacherID, Action: "assigned"})
	return nil
}

// UnassignSubject removes a teacher's subject assignment.
func (s *TeacherService) UnassignSubject(ctx context.Context, teacherID, subjectID string) error {
	if err := s.teachers.UnassignSubject(ctx, teacherID, subjectID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "unassignment failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "subject_teacher", EntityID: teacherID, Action: "unassigned"})
	return nil
}
