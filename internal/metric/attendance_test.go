package metric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

func record(daysAgo int, status models.AttendanceStatus, today time.Time) models.Attendance {
	return models.Attendance{Date: today.AddDate(0, 0, -daysAgo), Status: status}
}

func TestAttendanceRateEmpty(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, AttendanceRate(nil, 30, today))
}

func TestAttendanceRateCountsOnlyPresent(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	records := make([]models.Attendance, 0, 10)
	for i := 0; i < 7; i++ {
		records = append(records, record(i, models.AttendanceStatusPresent, today))
	}
	records = append(records,
		record(7, models.AttendanceStatusAbsent, today),
		record(8, models.AttendanceStatusLate, today),
		record(9, models.AttendanceStatusExcused, today),
	)
	assert.Equal(t, 70.0, AttendanceRate(records, 30, today))
}

func TestAttendanceRateExcludesOutOfWindow(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []models.Attendance{
		record(1, models.AttendanceStatusPresent, today),
		record(45, models.AttendanceStatusAbsent, today),
		record(90, models.AttendanceStatusPresent, today),
	}
	assert.Equal(t, 100.0, AttendanceRate(records, 30, today))
}

func TestAttendanceRateRounding(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []models.Attendance{
		record(0, models.AttendanceStatusPresent, today),
		record(1, models.AttendanceStatusPresent, today),
		record(2, models.AttendanceStatusAbsent, today),
	}
	// 2/3 = 66.666... -> 66.7
	assert.Equal(t, 66.7, AttendanceRate(records, 30, today))
}

func TestDayRateZeroDenominator(t *testing.T) {
	assert.Equal(t, 0.0, DayRate(0, 0))
	assert.Equal(t, 50.0, DayRate(1, 2))
}
