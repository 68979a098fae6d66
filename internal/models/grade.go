package models

import "time"

// GradeType labels the assessment a grade belongs to.
type GradeType string

const (
	GradeTypeExam       GradeType = "exam"
	GradeTypeQuiz       GradeType = "quiz"
	GradeTypeAssignment GradeType = "assignment"
	GradeTypeProject    GradeType = "project"
	GradeTypeMidterm    GradeType = "midterm"
	GradeTypeFinal      GradeType = "final"
)

// Valid reports whether the grade type is a supported value.
func (t GradeType) Valid() bool {
	switch t {
	case GradeTypeExam, GradeTypeQuiz, GradeTypeAssignment,
		GradeTypeProject, GradeTypeMidterm, GradeTypeFinal:
		return true
	default:
		return false
	}
}

// Grade records a numeric result for a student in a subject. LetterGrade is
// denormalized: it always equals the deterministic mapping of GradeValue at
// the time of the last write, or a caller-supplied fine-scale letter.
// Weight is stored but not consumed by the GPA formula.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	GradeValue   float64   `db:"grade_value" json:"grade_value"`
	LetterGrade  string    `db:"letter_grade" json:"letter_grade"`
	GradeType    GradeType `db:"grade_type" json:"grade_type"`
	Weight       float64   `db:"weight" json:"weight"`
	Semester     string    `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	DateRecorded time.Time `db:"date_recorded" json:"date_recorded"`
	Comments     *string   `db:"comments" json:"comments,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GradeDetail extends a grade with subject metadata for listings and exports.
type GradeDetail struct {
	Grade
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	StudentName string `db:"student_name" json:"student_name"`
}

// GradeFilter allows querying of grade entries.
type GradeFilter struct {
	StudentID    string
	SubjectID    string
	GradeType    GradeType
	Semester     string
	AcademicYear string
	Page         int
	PageSize     int
}

// LetterDistributionRow counts grades per letter bucket.
type LetterDistributionRow struct {
	Letter string `db:"letter_grade" json:"grade"`
	Count  int    `db:"count" json:"count"`
}
