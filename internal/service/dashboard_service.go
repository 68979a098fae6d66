package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/metric"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/pkg/config"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

// StatsReader runs the raw aggregate queries behind the dashboard.
type StatsReader interface {
	CountActiveStudents(ctx context.Context) (int, error)
	CountActiveSubjects(ctx context.Context) (int, error)
	CountStudentsEnrolledSince(ctx context.Context, since time.Time) (int, error)
	CountStudentsEnrolledOnOrBefore(ctx context.Context, cutoff time.Time) (int, error)
	AttendanceCounts(ctx context.Context, from, to time.Time) (total, present int, err error)
	AverageGPA(ctx context.Context) (float64, error)
	LetterDistribution(ctx context.Context) ([]models.LetterDistributionRow, error)
	StudentsByGradeLevel(ctx context.Context) ([]models.GradeLevelCount, error)
	DayAttendanceCounts(ctx context.Context, day time.Time) (total, present int, err error)
}

// Cache is the best-effort JSON cache surface.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DashboardService aggregates the admin dashboard figures with a short-TTL
// cache in front. Cache failures degrade to direct queries.
type DashboardService struct {
	stats  StatsReader
	cache  Cache
	cfg    config.DashboardConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(stats StatsReader, cache Cache, cfg config.DashboardConfig, logger *zap.Logger) *DashboardService {
	if cfg.AttendanceWindow <= 0 {
		cfg.AttendanceWindow = 30
	}
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = 30
	}
	if cfg.EnrollmentPeriods <= 0 {
		cfg.EnrollmentPeriods = 12
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &DashboardService{stats: stats, cache: cache, cfg: cfg, logger: logger, now: time.Now}
}

// Stats returns the full dashboard payload: overview figures, letter
// distribution, students per year level and the cumulative enrollment trend.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, apperrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	stats, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *DashboardService) build(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now().UTC()

	totalStudents, err := s.stats.CountActiveStudents(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student count failed")
	}
	totalSubjects, err := s.stats.CountActiveSubjects(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "subject count failed")
	}
	recentEnrollments, err := s.stats.CountStudentsEnrolledSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment count failed")
	}

	// Overview attendance covers the current calendar month, not the
	// rolling window used on student detail.
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	total, present, err := s.stats.AttendanceCounts(ctx, monthStart, now)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance counts failed")
	}

	avgGPA, err := s.stats.AverageGPA(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "gpa average failed")
	}

	distribution, err := s.stats.LetterDistribution(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "letter distribution failed")
	}
	byGrade, err := s.stats.StudentsByGradeLevel(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "grade level counts failed")
	}
	trend, err := s.enrollmentTrend(ctx, now)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		Overview: models.DashboardOverview{
			TotalStudents:     totalStudents,
			TotalSubjects:     totalSubjects,
			RecentEnrollments: recentEnrollments,
			AttendanceRate:    metric.DayRate(present, total),
			AverageGPA:        metric.Round2(avgGPA),
		},
		GradeDistribution: distribution,
		StudentsByGrade:   byGrade,
		EnrollmentTrend:   trend,
	}, nil
}

// enrollmentTrend samples the cumulative student count at 30-day steps back
// from today, then reverses so the series reads oldest first.
func (s *DashboardService) enrollmentTrend(ctx context.Context, now time.Time) ([]models.EnrollmentTrendPoint, error) {
	points := make([]models.EnrollmentTrendPoint, 0, s.cfg.EnrollmentPeriods)
	for i := 0; i < s.cfg.EnrollmentPeriods; i++ {
		cutoff := now.AddDate(0, 0, -30*i)
		count, err := s.stats.CountStudentsEnrolledOnOrBefore(ctx, cutoff)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment trend failed")
		}
		points = append(points, models.EnrollmentTrendPoint{
			Month: cutoff.Format("Jan 2006"),
			Count: count,
		})
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// AttendanceTrend returns the per-day attendance ratio for the trailing
// days, oldest first. Days without records carry a zero rate.
func (s *DashboardService) AttendanceTrend(ctx context.Context, days int) ([]models.AttendanceTrendPoint, error) {
	if days <= 0 || days > 365 {
		days = s.cfg.TrendDays
	}

	now := s.now().UTC()
	points := make([]models.AttendanceTrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -i)
		total, present, err := s.stats.DayAttendanceCounts(ctx, day)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "attendance trend failed")
		}
		points = append(points, models.AttendanceTrendPoint{
			Date:    day.Format("2006-01-02"),
			Rate:    metric.DayRate(present, total),
			Total:   total,
			Present: present,
		})
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// Invalidate drops the cached dashboard payload so the next read rebuilds
// from fresh aggregates. Called through the entity-change observer.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
