package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

// CalendarStore is the persistence surface for calendar events and academic
// years.
type CalendarStore interface {
	ListEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error)
	FindEventByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	CreateEvent(ctx context.Context, event *models.CalendarEvent) error
	UpdateEvent(ctx context.Context, event *models.CalendarEvent) error
	DeleteEvent(ctx context.Context, id string) error
	ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error)
	CurrentAcademicYear(ctx context.Context) (*models.AcademicYear, error)
	CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error
	SetCurrentAcademicYear(ctx context.Context, id string) error
}

// CalendarService manages the institutional calendar and academic years.
type CalendarService struct {
	store  CalendarStore
	logger *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(store CalendarStore, logger *zap.Logger) *CalendarService {
	return &CalendarService{store: store, logger: logger}
}

// ListEvents returns calendar events inside the window.
func (s *CalendarService) ListEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, *models.Pagination, error) {
	events, total, err := s.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "event listing failed")
	}
	return events, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// CreateEvent registers a new calendar event.
func (s *CalendarService) CreateEvent(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	var details []string
	if event.Title == "" {
		details = append(details, "title is required")
	}
	if event.StartDate.IsZero() {
		details = append(details, "start_date is required")
	}
	if event.EndDate != nil && event.EndDate.Before(event.StartDate) {
		details = append(details, "end_date must not precede start_date")
	}
	if len(details) > 0 {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, details...)
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "event creation failed")
	}
	return event, nil
}

// UpdateEvent modifies an existing calendar event.
func (s *CalendarService) UpdateEvent(ctx context.Context, id string, updated *models.CalendarEvent) (*models.CalendarEvent, error) {
	current, err := s.store.FindEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "event lookup failed")
	}
	updated.ID = current.ID
	if err := s.store.UpdateEvent(ctx, updated); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "event update failed")
	}
	return updated, nil
}

// DeleteEvent removes a calendar event.
func (s *CalendarService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.store.FindEventByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "event lookup failed")
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "event deletion failed")
	}
	return nil
}

// ListAcademicYears returns all academic years.
func (s *CalendarService) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	years, err := s.store.ListAcademicYears(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "academic year listing failed")
	}
	return years, nil
}

// CurrentAcademicYear returns the year flagged current.
func (s *CalendarService) CurrentAcademicYear(ctx context.Context) (*models.AcademicYear, error) {
	year, err := s.store.CurrentAcademicYear(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "no current academic year configured")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "academic year lookup failed")
	}
	return year, nil
}

// CreateAcademicYear registers a new academic year, optionally making it
// current.
func (s *CalendarService) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) (*models.AcademicYear, error) {
	if year.Year == "" || year.StartDate.IsZero() || year.EndDate.IsZero() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "year, start_date and end_date are required")
	}
	if year.EndDate.Before(year.StartDate) {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "end_date must not precede start_date")
	}
	makeCurrent := year.IsCurrent
	year.IsCurrent = false
	if err := s.store.CreateAcademicYear(ctx, year); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "academic year creation failed")
	}
	if makeCurrent {
		if err := s.store.SetCurrentAcademicYear(ctx, year.ID); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "academic year activation failed")
		}
		year.IsCurrent = true
	}
	return year, nil
}

// SetCurrentAcademicYear makes the given year the single current one.
func (s *CalendarService) SetCurrentAcademicYear(ctx context.Context, id string) error {
	if err := s.store.SetCurrentAcademicYear(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "academic year activation failed")
	}
	return nil
}
