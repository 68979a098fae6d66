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

// EnrollmentRepository manages the student-to-subject enrollment relation.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `e.id, e.student_id, e.subject_id, e.status, e.semester, e.academic_year,
        e.enrollment_date, e.created_at, e.updated_at`

// List returns enrollment rows with student and subject names joined in.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e JOIN students s ON s.id = e.student_id JOIN subjects sub ON sub.id = e.subject_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("e.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("e.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
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

	query := fmt.Sprintf(`SELECT %s, s.first_name || ' ' || s.last_name AS student_name,
        s.student_id AS student_code, sub.name AS subject_name, sub.code AS subject_code
        %s ORDER BY e.enrollment_date DESC, e.created_at DESC LIMIT %d OFFSET %d`,
		enrollmentColumns, base, size, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID fetches an enrollment by primary key.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf("SELECT %s FROM enrollments e WHERE e.id = $1", enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindActive returns the active enrollment linking a student to a subject,
// if any exists.
func (r *EnrollmentRepository) FindActive(ctx context.Context, studentID, subjectID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM enrollments e WHERE e.student_id = $1 AND e.subject_id = $2 AND e.status = $3 LIMIT 1",
		enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, subjectID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CurrentByStudent returns the student's most recent active enrollment.
// Ties on enrollment_date break by highest id so the pick is deterministic.
func (r *EnrollmentRepository) CurrentByStudent(ctx context.Context, studentID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM enrollments e WHERE e.student_id = $1 AND e.status = $2
        ORDER BY e.enrollment_date DESC, e.id DESC LIMIT 1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, models.EnrollmentStatusEnrolled); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListActiveStudentIDsBySubjects returns distinct ids of students with an
// active enrollment in any of the given subjects.
func (r *EnrollmentRepository) ListActiveStudentIDsBySubjects(ctx context.Context, subjectIDs []string) ([]string, error) {
	if len(subjectIDs) == 0 {
		return []string{}, nil
	}
	placeholders := make([]string, len(subjectIDs))
	args := make([]interface{}, 0, len(subjectIDs)+1)
	for i, id := range subjectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	args = append(args, models.EnrollmentStatusEnrolled)
	query := fmt.Sprintf(
		"SELECT DISTINCT e.student_id FROM enrollments e WHERE e.subject_id IN (%s) AND e.status = $%d",
		strings.Join(placeholders, ","), len(args))

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list student ids by subjects: %w", err)
	}
	return ids, nil
}

// IsStudentEnrolledInSubjects reports whether the student holds an active
// enrollment in any of the given subjects.
func (r *EnrollmentRepository) IsStudentEnrolledInSubjects(ctx context.Context, studentID string, subjectIDs []string) (bool, error) {
	if len(subjectIDs) == 0 {
		return false, nil
	}
	placeholders := make([]string, len(subjectIDs))
	args := make([]interface{}, 0, len(subjectIDs)+2)
	args = append(args, studentID)
	for i, id := range subjectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	args = append(args, models.EnrollmentStatusEnrolled)
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM enrollments e WHERE e.student_id = $1 AND e.subject_id IN (%s) AND e.status = $%d",
		strings.Join(placeholders, ","), len(args))

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, subject_id, status, semester, academic_year,
        enrollment_date, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :status, :semester, :academic_year,
        :enrollment_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus transitions an enrollment's lifecycle state.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// Delete removes an enrollment row.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// CountActiveBySubject reports how many active enrollments a subject holds.
// Used to enforce the capacity cap before admitting another student.
func (r *EnrollmentRepository) CountActiveBySubject(ctx context.Context, subjectID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments e WHERE e.subject_id = $1 AND e.status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID, models.EnrollmentStatusEnrolled); err != nil {
		return 0, fmt.Errorf("count subject enrollments: %w", err)
	}
	return count, nil
}
