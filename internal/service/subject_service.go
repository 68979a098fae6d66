package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

// SubjectStore is the persistence surface for subject writes and reads.
type SubjectStore interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Deactivate(ctx context.Context, id string) error
}

// SubjectService implements subject CRUD.
type SubjectService struct {
	subjects SubjectStore
	observer EntityObserver
	logger   *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(subjects SubjectStore, observer EntityObserver, logger *zap.Logger) *SubjectService {
	return &SubjectService{subjects: subjects, observer: observer, logger: logger}
}

// List returns subjects matching the filter.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.subjects.List(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject listing failed")
	}
	return subjects, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// Get fetches a single subject.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject lookup failed")
	}
	return subject, nil
}

// Create registers a new subject with a unique code.
func (s *SubjectService) Create(ctx context.Context, subject *models.Subject) (*models.Subject, error) {
	if subject.Code == "" || subject.Name == "" {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "code and name are required")
	}
	exists, err := s.subjects.ExistsByCode(ctx, subject.Code, "")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "uniqueness check failed")
	}
	if exists {
		return nil, apperrors.Clone(apperrors.ErrConflict, "subject code already in use")
	}
	subject.IsActive = true
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject creation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "subject", EntityID: subject.ID, Action: "created"})
	return subject, nil
}

// Update modifies an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, updated *models.Subject) (*models.Subject, error) {
	current, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject lookup failed")
	}
	if updated.Code != current.Code {
		exists, err := s.subjects.ExistsByCode(ctx, updated.Code, id)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "uniqueness check failed")
		}
		if exists {
			return nil, apperrors.Clone(apperrors.ErrConflict, "subject code already in use")
		}
	}
	updated.ID = current.ID
	if err := s.subjects.Update(ctx, updated); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "subject", EntityID: id, Action: "updated"})
	return updated, nil
}

// Deactivate soft-deletes a subject; existing enrollments are untouched.
func (s *SubjectService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.subjects.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject lookup failed")
	}
	if err := s.subjects.Deactivate(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject deactivation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "subject", EntityID: id, Action: "deactivated"})
	return nil
}
