package models

import "time"

// FeeType scopes how often a fee structure applies.
type FeeType string

const (
	FeeTypeSemester FeeType = "semester"
	FeeTypeAnnual   FeeType = "annual"
	FeeTypeOneTime  FeeType = "one-time"
)

// Valid reports whether the fee type is a supported value.
func (t FeeType) Valid() bool {
	switch t {
	case FeeTypeSemester, FeeTypeAnnual, FeeTypeOneTime:
		return true
	default:
		return false
	}
}

// FeeStructure is a named fee line item, optionally scoped to a faculty
// subject, semester and academic year.
type FeeStructure struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Amount       float64    `db:"amount" json:"amount"`
	FeeType      FeeType    `db:"fee_type" json:"fee_type"`
	FacultyID    *string    `db:"faculty_id" json:"faculty_id,omitempty"`
	Semester     *string    `db:"semester" json:"semester,omitempty"`
	AcademicYear *string    `db:"academic_year" json:"academic_year,omitempty"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// PaymentStatus labels the clearing state of a single payment.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// FeePayment records money received against a fee structure. Multiple
// partial payments may accumulate against one structure for one student;
// the model does not prevent overpayment.
type FeePayment struct {
	ID             string        `db:"id" json:"id"`
	StudentID      string        `db:"student_id" json:"student_id"`
	FeeStructureID string        `db:"fee_structure_id" json:"fee_structure_id"`
	AmountPaid     float64       `db:"amount_paid" json:"amount_paid"`
	PaymentDate    time.Time     `db:"payment_date" json:"payment_date"`
	PaymentMethod  string        `db:"payment_method" json:"payment_method"`
	ReceiptNumber  string        `db:"receipt_number" json:"receipt_number"`
	PaymentStatus  PaymentStatus `db:"payment_status" json:"payment_status"`
	Remarks        *string       `db:"remarks" json:"remarks,omitempty"`
	RecordedBy     *string       `db:"recorded_by" json:"recorded_by,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// FeeStructureFilter scopes structure listings.
type FeeStructureFilter struct {
	FacultyID    string
	FeeType      FeeType
	AcademicYear string
	Active       *bool
	Page         int
	PageSize     int
}

// FeePaymentFilter scopes payment listings.
type FeePaymentFilter struct {
	StudentID      string
	FeeStructureID string
	Page           int
	PageSize       int
}
