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

// TeacherRepository manages teacher profiles and subject assignments.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = `t.id, t.teacher_id, t.user_id, t.first_name, t.last_name, t.email, t.phone,
        t.department, t.specialization, t.qualification, t.hire_date, t.active, t.created_at, t.updated_at`

// List returns teachers matching the provided filters.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers t"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("t.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(t.first_name) LIKE $%d OR LOWER(t.last_name) LIKE $%d OR LOWER(t.teacher_id) LIKE $%d)", idx, idx, idx))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY t.last_name ASC, t.first_name ASC LIMIT %d OFFSET %d",
		teacherColumns, base, size, offset)

	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher by primary key.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t WHERE t.id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByUserID resolves the teacher profile backing a user account. A user
// with the teacher role but no profile row gets sql.ErrNoRows, which the
// access layer treats as an empty scope.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t WHERE t.user_id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a new teacher profile.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, teacher_id, user_id, first_name, last_name, email, phone,
        department, specialization, qualification, hire_date, active, created_at, updated_at)
        VALUES (:id, :teacher_id, :user_id, :first_name, :last_name, :email, :phone,
        :department, :specialization, :qualification, :hire_date, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies an existing teacher profile.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET teacher_id = :teacher_id, user_id = :user_id, first_name = :first_name,
        last_name = :last_name, email = :email, phone = :phone, department = :department,
        specialization = :specialization, qualification = :qualification, hire_date = :hire_date,
        active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// ListSubjectIDs returns ids of subjects assigned to the teacher.
func (r *TeacherRepository) ListSubjectIDs(ctx context.Context, teacherID string) ([]string, error) {
	const query = `SELECT st.subject_id FROM subject_teachers st WHERE st.teacher_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return ids, nil
}

// AssignSubject links a teacher to a subject. Duplicate assignments are
// rejected by the unique constraint on (teacher_id, subject_id).
func (r *TeacherRepository) AssignSubject(ctx context.Context, teacherID, subjectID string) error {
	const query = `INSERT INTO subject_teachers (id, teacher_id, subject_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), teacherID, subjectID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign subject: %w", err)
	}
	return nil
}

// UnassignSubject removes a teacher's subject assignment.
func (r *TeacherRepository) UnassignSubject(ctx context.Context, teacherID, subjectID string) error {
	const query = `DELETE FROM subject_teachers WHERE teacher_id = $1 AND subject_id = $2`
	if _, err := r.db.ExecContext(ctx, query, teacherID, subjectID); err != nil {
		return fmt.Errorf("unassign subject: %w", err)
	}
	return nil
}
