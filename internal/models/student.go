package models

import "time"

// StudentStatus represents the lifecycle state of a student record.
type StudentStatus string

const (
	StudentStatusActive      StudentStatus = "active"
	StudentStatusInactive    StudentStatus = "inactive"
	StudentStatusSuspended   StudentStatus = "suspended"
	StudentStatusGraduated   StudentStatus = "graduated"
	StudentStatusTransferred StudentStatus = "transferred"
)

// Valid reports whether the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusSuspended,
		StudentStatusGraduated, StudentStatusTransferred:
		return true
	default:
		return false
	}
}

// GradeLevels is the supported set of year levels.
var GradeLevels = []string{"1st Year", "2nd Year", "3rd Year", "4th Year"}

// ValidGradeLevel reports whether the level is in the supported set.
func ValidGradeLevel(level string) bool {
	for _, l := range GradeLevels {
		if l == level {
			return true
		}
	}
	return false
}

// Student represents a learner registered in the institution.
// GPA is a denormalized cache recomputed after every grade write; the
// grades table remains the source of truth.
type Student struct {
	ID               string        `db:"id" json:"id"`
	StudentID        string        `db:"student_id" json:"student_id"`
	FirstName        string        `db:"first_name" json:"first_name"`
	LastName         string        `db:"last_name" json:"last_name"`
	Email            string        `db:"email" json:"email"`
	Phone            *string       `db:"phone" json:"phone,omitempty"`
	Address          *string       `db:"address" json:"address,omitempty"`
	EmergencyContact *string       `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone   *string       `db:"emergency_phone" json:"emergency_phone,omitempty"`
	PhotoFilename    *string       `db:"photo_filename" json:"photo_filename,omitempty"`
	GradeLevel       string        `db:"grade_level" json:"grade_level"`
	Status           StudentStatus `db:"status" json:"status"`
	GPA              float64       `db:"gpa" json:"gpa"`
	EnrollmentDate   time.Time     `db:"enrollment_date" json:"enrollment_date"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display and export.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search     string
	GradeLevel string
	Status     *StudentStatus
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// StudentDetail extends a student snapshot with derived metrics for the
// detail endpoint and portal views.
type StudentDetail struct {
	Student
	AttendanceRate float64       `json:"attendance_rate"`
	RecentGrades   []GradeDetail `json:"recent_grades"`
}
