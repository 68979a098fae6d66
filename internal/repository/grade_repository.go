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

// GradeRepository manages persistence for grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = `g.id, g.student_id, g.subject_id, g.grade_value, g.letter_grade, g.grade_type,
        g.weight, g.semester, g.academic_year, g.date_recorded, g.comments, g.created_at, g.updated_at`

const gradeDetailColumns = gradeColumns + `,
        s.first_name || ' ' || s.last_name AS student_name,
        sub.name AS subject_name, sub.code AS subject_code`

const gradeDetailJoins = ` JOIN students s ON s.id = g.student_id
        JOIN subjects sub ON sub.id = g.subject_id`

// List returns grade rows with student and subject names joined in.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	base := "FROM grades g" + gradeDetailJoins
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("g.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.GradeType != "" {
		conditions = append(conditions, fmt.Sprintf("g.grade_type = $%d", len(args)+1))
		args = append(args, filter.GradeType)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("g.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("g.academic_year = $%d", len(args)+1))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY g.date_recorded DESC, g.created_at DESC LIMIT %d OFFSET %d",
		gradeDetailColumns, base, size, offset)

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}
	return grades, total, nil
}

// ListByStudent returns every grade a student holds, most recent first.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades g WHERE g.student_id = $1 ORDER BY g.date_recorded DESC, g.created_at DESC", gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades by student: %w", err)
	}
	return grades, nil
}

// ListRecentByStudent returns the student's most recent grades with subject
// names joined, capped at limit.
func (r *GradeRepository) ListRecentByStudent(ctx context.Context, studentID string, limit int) ([]models.GradeDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(
		"SELECT %s FROM grades g%s WHERE g.student_id = $1 ORDER BY g.date_recorded DESC, g.created_at DESC LIMIT %d",
		gradeDetailColumns, gradeDetailJoins, limit)
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list recent grades: %w", err)
	}
	return grades, nil
}

// FindByID fetches a grade by primary key.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	query := fmt.Sprintf("SELECT %s FROM grades g WHERE g.id = $1", gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// Create inserts a new grade.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	grade.CreatedAt = now
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, subject_id, grade_value, letter_grade, grade_type,
        weight, semester, academic_year, date_recorded, comments, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :grade_value, :letter_grade, :grade_type,
        :weight, :semester, :academic_year, :date_recorded, :comments, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies an existing grade.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET grade_value = :grade_value, letter_grade = :letter_grade,
        grade_type = :grade_type, weight = :weight, semester = :semester, academic_year = :academic_year,
        date_recorded = :date_recorded, comments = :comments, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// Delete removes a grade row.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grades WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}
