package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/pkg/config"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

type fakeStatsReader struct {
	students     int
	subjects     int
	recent       int
	cumulative   map[string]int
	monthTotal   int
	monthPresent int
	avgGPA       float64
	distribution []models.LetterDistributionRow
	byGrade      []models.GradeLevelCount
	dayCounts    map[string][2]int
}

func (f *fakeStatsReader) CountActiveStudents(context.Context) (int, error)  { return f.students, nil }
func (f *fakeStatsReader) CountActiveSubjects(context.Context) (int, error)  { return f.subjects, nil }
func (f *fakeStatsReader) CountStudentsEnrolledSince(context.Context, time.Time) (int, error) {
	return f.recent, nil
}

func (f *fakeStatsReader) CountStudentsEnrolledOnOrBefore(_ context.Context, cutoff time.Time) (int, error) {
	return f.cumulative[cutoff.Format("2006-01-02")], nil
}

func (f *fakeStatsReader) AttendanceCounts(context.Context, time.Time, time.Time) (int, int, error) {
	return f.monthTotal, f.monthPresent, nil
}

func (f *fakeStatsReader) AverageGPA(context.Context) (float64, error) { return f.avgGPA, nil }

func (f *fakeStatsReader) LetterDistribution(context.Context) ([]models.LetterDistributionRow, error) {
	return f.distribution, nil
}

func (f *fakeStatsReader) StudentsByGradeLevel(context.Context) ([]models.GradeLevelCount, error) {
	return f.byGrade, nil
}

func (f *fakeStatsReader) DayAttendanceCounts(_ context.Context, day time.Time) (int, int, error) {
	counts := f.dayCounts[day.Format("2006-01-02")]
	return counts[0], counts[1], nil
}

func newDashboardService(stats *fakeStatsReader, periods int) *DashboardService {
	svc := NewDashboardService(stats, nil, config.DashboardConfig{
		EnrollmentPeriods: periods,
		TrendDays:         3,
	}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardOverviewFigures(t *testing.T) {
	stats := &fakeStatsReader{
		students:     120,
		subjects:     14,
		recent:       9,
		monthTotal:   200,
		monthPresent: 170,
		avgGPA:       3.126,
		cumulative:   map[string]int{},
	}
	svc := newDashboardService(stats, 2)

	out, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, out.Overview.TotalStudents)
	assert.Equal(t, 14, out.Overview.TotalSubjects)
	assert.Equal(t, 9, out.Overview.RecentEnrollments)
	assert.Equal(t, 85.0, out.Overview.AttendanceRate)
	assert.Equal(t, 3.13, out.Overview.AverageGPA)
}

func TestDashboardEnrollmentTrendOldestFirst(t *testing.T) {
	stats := &fakeStatsReader{
		cumulative: map[string]int{
			"2025-06-15": 120,
			"2025-05-16": 110,
			"2025-04-16": 95,
		},
	}
	svc := newDashboardService(stats, 3)

	out, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, out.EnrollmentTrend, 3)
	assert.Equal(t, 95, out.EnrollmentTrend[0].Count)
	assert.Equal(t, 110, out.EnrollmentTrend[1].Count)
	assert.Equal(t, 120, out.EnrollmentTrend[2].Count)
}

func TestAttendanceTrendOldestFirstWithZeroDays(t *testing.T) {
	stats := &fakeStatsReader{
		dayCounts: map[string][2]int{
			"2025-06-15": {10, 9},
			"2025-06-14": {10, 7},
			// 2025-06-13 has no records
		},
	}
	svc := newDashboardService(stats, 1)

	points, err := svc.AttendanceTrend(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2025-06-13", points[0].Date)
	assert.Equal(t, 0.0, points[0].Rate)
	assert.Equal(t, "2025-06-14", points[1].Date)
	assert.Equal(t, 70.0, points[1].Rate)
	assert.Equal(t, "2025-06-15", points[2].Date)
	assert.Equal(t, 90.0, points[2].Rate)
}

func TestAttendanceTrendClampsDays(t *testing.T) {
	stats := &fakeStatsReader{dayCounts: map[string][2]int{}}
	svc := newDashboardService(stats, 1)

	points, err := svc.AttendanceTrend(context.Background(), -5)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

type fakeDashboardCache struct {
	entries map[string][]byte
	deleted []string
}

func (c *fakeDashboardCache) Get(context.Context, string, interface{}) error {
	return apperrors.ErrCacheMiss
}

func (c *fakeDashboardCache) Set(_ context.Context, key string, _ interface{}, _ time.Duration) error {
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[key] = nil
	return nil
}

func (c *fakeDashboardCache) Delete(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	return nil
}

func TestEntityWriteInvalidatesDashboardCache(t *testing.T) {
	cache := &fakeDashboardCache{}
	svc := NewDashboardService(&fakeStatsReader{cumulative: map[string]int{}}, cache, config.DashboardConfig{
		EnrollmentPeriods: 1,
	}, zap.NewNop())

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Contains(t, cache.entries, "dashboard:stats")

	observer := MultiObserver{NewDashboardInvalidator(svc)}
	observer.Notify(context.Background(), EntityEvent{Entity: "grade", EntityID: "g1", Action: "created"})

	assert.Equal(t, []string{"dashboard:stats"}, cache.deleted)
}
