package metric

import (
	"time"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// AttendanceRate computes the share of "present" records over the rolling
// window [today-windowDays, today]. Records dated before the window are
// excluded; the window never looks forward. Absent, late and excused all
// count against the ratio. An empty window yields 0, never NaN.
func AttendanceRate(records []models.Attendance, windowDays int, today time.Time) float64 {
	start := today.AddDate(0, 0, -windowDays)
	var total, present int
	for _, r := range records {
		if r.Date.Before(start) {
			continue
		}
		total++
		if r.Status == models.AttendanceStatusPresent {
			present++
		}
	}
	if total == 0 {
		return 0
	}
	return Round1(float64(present) / float64(total) * 100)
}

// DayRate computes a single day's present/total ratio for trend series.
func DayRate(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round1(float64(present) / float64(total) * 100)
}
