package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// CalendarRepository manages institution-wide calendar events and academic
// year rows.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a CalendarRepository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

const eventColumns = `ce.id, ce.title, ce.description, ce.event_type, ce.start_date, ce.end_date,
        ce.audience, ce.created_by, ce.created_at, ce.updated_at`

// ListEvents returns calendar events inside the requested window.
func (r *CalendarRepository) ListEvents(ctx context.Context, filter models.CalendarFilter) ([]models.CalendarEvent, int, error) {
	base := "FROM calendar_events ce"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("ce.start_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("ce.start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY ce.start_date ASC LIMIT %d OFFSET %d", eventColumns, base, size, offset)

	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list calendar events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count calendar events: %w", err)
	}
	return events, total, nil
}

// FindEventByID fetches an event by primary key.
func (r *CalendarRepository) FindEventByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM calendar_events ce WHERE ce.id = $1", eventColumns)
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent inserts a new calendar event.
func (r *CalendarRepository) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	const query = `INSERT INTO calendar_events (id, title, description, event_type, start_date, end_date,
        audience, created_by, created_at, updated_at)
        VALUES (:id, :title, :description, :event_type, :start_date, :end_date,
        :audience, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// UpdateEvent modifies an existing calendar event.
func (r *CalendarRepository) UpdateEvent(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_events SET title = :title, description = :description,
        event_type = :event_type, start_date = :start_date, end_date = :end_date,
        audience = :audience, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes a calendar event.
func (r *CalendarRepository) DeleteEvent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

const academicYearColumns = `ay.id, ay.year, ay.start_date, ay.end_date, ay.is_current, ay.created_at`

// ListAcademicYears returns all academic years, newest first.
func (r *CalendarRepository) ListAcademicYears(ctx context.Context) ([]models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years ay ORDER BY ay.start_date DESC", academicYearColumns)
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// CurrentAcademicYear returns the row flagged current.
func (r *CalendarRepository) CurrentAcademicYear(ctx context.Context) (*models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years ay WHERE ay.is_current = TRUE LIMIT 1", academicYearColumns)
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query); err != nil {
		return nil, err
	}
	return &year, nil
}

// CreateAcademicYear inserts a new academic year row.
func (r *CalendarRepository) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	year.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO academic_years (id, year, start_date, end_date, is_current, created_at)
        VALUES (:id, :year, :start_date, :end_date, :is_current, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}
	return nil
}

// SetCurrentAcademicYear flips the current flag to the given row inside one
// transaction so exactly one row stays current.
func (r *CalendarRepository) SetCurrentAcademicYear(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "UPDATE academic_years SET is_current = FALSE WHERE is_current = TRUE"); err != nil {
		return fmt.Errorf("clear current year: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE academic_years SET is_current = TRUE WHERE id = $1", id); err != nil {
		return fmt.Errorf("set current year: %w", err)
	}
	return tx.Commit()
}
