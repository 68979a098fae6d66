package models

import "time"

// Teacher represents an instructor profile, optionally linked to a user account.
type Teacher struct {
	ID             string     `db:"id" json:"id"`
	TeacherID      string     `db:"teacher_id" json:"teacher_id"`
	UserID         *string    `db:"user_id" json:"user_id,omitempty"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Department     *string    `db:"department" json:"department,omitempty"`
	Specialization *string    `db:"specialization" json:"specialization,omitempty"`
	Qualification  *string    `db:"qualification" json:"qualification,omitempty"`
	HireDate       *time.Time `db:"hire_date" json:"hire_date,omitempty"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}

// SubjectTeacher assigns a subject to a teacher.
type SubjectTeacher struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
