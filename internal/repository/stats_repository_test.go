package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositoryCountActiveStudents(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students WHERE status = \\$1").
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountActiveStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestStatsRepositoryAverageGPACoversWholeRoster(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepository(db)

	// No status or gpa filter: inactive and zero-GPA students are part of
	// the mean.
	mock.ExpectQuery("SELECT COALESCE\\(AVG\\(gpa\\), 0\\) FROM students$").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2.0))

	avg, err := repo.AverageGPA(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, avg)
}

func TestStatsRepositoryCountStudentsEnrolledSince(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepository(db)

	since := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students WHERE enrollment_date >= \\$1").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountStudentsEnrolledSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestStatsRepositoryAttendanceCounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepository(db)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total").
		WithArgs(from, to, "present").
		WillReturnRows(sqlmock.NewRows([]string{"total", "present"}).AddRow(200, 170))

	total, present, err := repo.AttendanceCounts(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 200, total)
	assert.Equal(t, 170, present)
}

func TestStatsRepositoryLetterDistribution(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepository(db)

	mock.ExpectQuery("SELECT letter_grade, COUNT\\(\\*\\) AS count FROM grades").
		WillReturnRows(sqlmock.NewRows([]string{"letter_grade", "count"}).
			AddRow("A", 10).
			AddRow("B", 7).
			AddRow("F", 2))

	rows, err := repo.LetterDistribution(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "A", rows[0].Letter)
	assert.Equal(t, 10, rows[0].Count)
}
