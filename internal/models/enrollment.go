package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Valid reports whether the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusDropped, EnrollmentStatusCompleted:
		return true
	default:
		return false
	}
}

// Enrollment registers a student to a subject for a semester. The active
// ("enrolled") row determines the student's faculty for fee scoping; when
// several exist the most recent enrollment_date wins, then the highest id.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	SubjectID      string           `db:"subject_id" json:"subject_id"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	Semester       string           `db:"semester" json:"semester"`
	AcademicYear   string           `db:"academic_year" json:"academic_year"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and subject info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID    string
	SubjectID    string
	Status       EnrollmentStatus
	Semester     string
	AcademicYear string
	Page         int
	PageSize     int
}
