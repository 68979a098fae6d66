package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// StatsRepository runs the aggregate queries behind the dashboard. All
// derived figures come from these raw counts; ratio arithmetic lives in the
// metric package.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// CountActiveStudents counts students with status active.
func (r *StatsRepository) CountActiveStudents(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM students WHERE status = $1", models.StudentStatusActive)
	if err != nil {
		return 0, fmt.Errorf("count active students: %w", err)
	}
	return count, nil
}

// CountActiveSubjects counts subjects flagged active.
func (r *StatsRepository) CountActiveSubjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM subjects WHERE is_active = TRUE")
	if err != nil {
		return 0, fmt.Errorf("count active subjects: %w", err)
	}
	return count, nil
}

// CountStudentsEnrolledSince counts students whose enrollment date falls on
// or after the cutoff. Counting students, not enrollment rows, keeps a
// student with several subject enrollments at one.
func (r *StatsRepository) CountStudentsEnrolledSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM students WHERE enrollment_date >= $1", since)
	if err != nil {
		return 0, fmt.Errorf("count recent enrollments: %w", err)
	}
	return count, nil
}

// CountStudentsEnrolledOnOrBefore counts students whose enrollment date does
// not exceed the cutoff. Feeds the cumulative enrollment trend.
func (r *StatsRepository) CountStudentsEnrolledOnOrBefore(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM students WHERE enrollment_date <= $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("count students by enrollment cutoff: %w", err)
	}
	return count, nil
}

// AttendanceCounts returns total and present record counts in [from, to].
func (r *StatsRepository) AttendanceCounts(ctx context.Context, from, to time.Time) (total, present int, err error) {
	const query = `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE status = $3) AS present
        FROM attendance WHERE date >= $1 AND date <= $2`
	row := struct {
		Total   int `db:"total"`
		Present int `db:"present"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, from, to, models.AttendanceStatusPresent); err != nil {
		return 0, 0, fmt.Errorf("attendance counts: %w", err)
	}
	return row.Total, row.Present, nil
}

// AverageGPA returns the mean cached GPA across the whole roster, every
// status included. Students without grades carry a zero GPA and weigh the
// mean down; only an empty roster coalesces to zero.
func (r *StatsRepository) AverageGPA(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.GetContext(ctx, &avg, "SELECT COALESCE(AVG(gpa), 0) FROM students")
	if err != nil {
		return 0, fmt.Errorf("average gpa: %w", err)
	}
	return avg, nil
}

// LetterDistribution counts grades per stored letter. Rows with an empty
// letter are excluded.
func (r *StatsRepository) LetterDistribution(ctx context.Context) ([]models.LetterDistributionRow, error) {
	const query = `SELECT letter_grade, COUNT(*) AS count FROM grades
        WHERE letter_grade <> '' GROUP BY letter_grade ORDER BY letter_grade`
	var rows []models.LetterDistributionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("letter distribution: %w", err)
	}
	return rows, nil
}

// StudentsByGradeLevel counts active students per year level.
func (r *StatsRepository) StudentsByGradeLevel(ctx context.Context) ([]models.GradeLevelCount, error) {
	const query = `SELECT grade_level, COUNT(*) AS count FROM students
        WHERE status = $1 GROUP BY grade_level ORDER BY grade_level`
	var rows []models.GradeLevelCount
	if err := r.db.SelectContext(ctx, &rows, query, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("students by grade level: %w", err)
	}
	return rows, nil
}

// DayAttendanceCounts returns total and present record counts for one day.
func (r *StatsRepository) DayAttendanceCounts(ctx context.Context, day time.Time) (total, present int, err error) {
	const query = `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE status = $2) AS present
        FROM attendance WHERE date = $1`
	row := struct {
		Total   int `db:"total"`
		Present int `db:"present"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, day, models.AttendanceStatusPresent); err != nil {
		return 0, 0, fmt.Errorf("day attendance counts: %w", err)
	}
	return row.Total, row.Present, nil
}
