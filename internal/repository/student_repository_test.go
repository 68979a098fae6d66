package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "first_name", "last_name", "email", "phone", "address",
		"emergency_contact", "emergency_phone", "photo_filename", "grade_level", "status", "gpa",
		"enrollment_date", "created_at", "updated_at",
	})
}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM students s WHERE s.id = \\$1").
		WithArgs("stu-1").
		WillReturnRows(studentRows().AddRow(
			"stu-1", "S2025-001", "Maria", "Santos", "maria@example.com", nil, nil,
			nil, nil, nil, "2nd Year", "active", 3.41, now, now, now))

	student, err := repo.FindByID(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "S2025-001", student.StudentID)
	assert.Equal(t, 3.41, student.GPA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT .* FROM students s WHERE s.id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryListFiltersByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	now := time.Now()
	status := models.StudentStatusActive
	mock.ExpectQuery("SELECT .* FROM students s WHERE 1=1 AND s.status = \\$1 ORDER BY s.created_at DESC").
		WithArgs(status).
		WillReturnRows(studentRows().AddRow(
			"stu-1", "S2025-001", "Maria", "Santos", "maria@example.com", nil, nil,
			nil, nil, nil, "2nd Year", "active", 3.41, now, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s WHERE 1=1 AND s.status = $1")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateGPA(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET gpa = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("stu-1", 3.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateGPA(context.Background(), "stu-1", 3.5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE student_id = $1 LIMIT 1")).
		WithArgs("S2025-001").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByStudentID(context.Background(), "S2025-001", "")
	require.NoError(t, err)
	assert.False(t, exists)
}
