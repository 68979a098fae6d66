package models

// DashboardOverview summarises headline figures for the admin dashboard.
type DashboardOverview struct {
	TotalStudents     int     `json:"total_students"`
	TotalSubjects     int     `json:"total_subjects"`
	RecentEnrollments int     `json:"recent_enrollments"`
	AttendanceRate    float64 `json:"attendance_rate"`
	AverageGPA        float64 `json:"average_gpa"`
}

// GradeLevelCount counts active students per year level.
type GradeLevelCount struct {
	GradeLevel string `db:"grade_level" json:"grade"`
	Count      int    `db:"count" json:"count"`
}

// EnrollmentTrendPoint is one step of the cumulative enrollment curve.
type EnrollmentTrendPoint struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// AttendanceTrendPoint is a single-day attendance ratio.
type AttendanceTrendPoint struct {
	Date    string  `json:"date"`
	Rate    float64 `json:"rate"`
	Total   int     `json:"total"`
	Present int     `json:"present"`
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Overview          DashboardOverview       `json:"overview"`
	GradeDistribution []LetterDistributionRow `json:"grade_distribution"`
	StudentsByGrade   []GradeLevelCount       `json:"students_by_grade"`
	EnrollmentTrend   []EnrollmentTrendPoint  `json:"enrollment_trend"`
}
