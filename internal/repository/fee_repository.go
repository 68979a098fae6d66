package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// FeeRepository manages fee structures and recorded payments.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeStructureColumns = `fs.id, fs.name, fs.amount, fs.fee_type, fs.faculty_id, fs.semester,
        fs.academic_year, fs.due_date, fs.is_active, fs.created_at, fs.updated_at`

const feePaymentColumns = `fp.id, fp.student_id, fp.fee_structure_id, fp.amount_paid, fp.payment_date,
        fp.payment_method, fp.receipt_number, fp.payment_status, fp.remarks, fp.recorded_by, fp.created_at`

// ListStructures returns fee structures matching the provided filters.
func (r *FeeRepository) ListStructures(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructure, int, error) {
	base := "FROM fee_structures fs"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("fs.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.FeeType != "" {
		conditions = append(conditions, fmt.Sprintf("fs.fee_type = $%d", len(args)+1))
		args = append(args, filter.FeeType)
	}
	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("fs.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("fs.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY fs.due_date ASC NULLS LAST, fs.name ASC LIMIT %d OFFSET %d",
		feeStructureColumns, base, size, offset)

	var structures []models.FeeStructure
	if err := r.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee structures: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count fee structures: %w", err)
	}
	return structures, total, nil
}

// ListApplicableStructures returns active fee structures applicable to a
// student: structures with no faculty restriction plus those bound to the
// given faculty.
func (r *FeeRepository) ListApplicableStructures(ctx context.Context, facultyID *string) ([]models.FeeStructure, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_structures fs WHERE fs.is_active = TRUE AND fs.faculty_id IS NULL", feeStructureColumns)
	args := []interface{}{}
	if facultyID != nil {
		query = fmt.Sprintf("SELECT %s FROM fee_structures fs WHERE fs.is_active = TRUE AND (fs.faculty_id IS NULL OR fs.faculty_id = $1)", feeStructureColumns)
		args = append(args, *facultyID)
	}
	query += " ORDER BY fs.due_date ASC NULLS LAST, fs.name ASC"

	var structures []models.FeeStructure
	if err := r.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, fmt.Errorf("list applicable fee structures: %w", err)
	}
	return structures, nil
}

// FindStructureByID fetches a fee structure by primary key.
func (r *FeeRepository) FindStructureByID(ctx context.Context, id string) (*models.FeeStructure, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_structures fs WHERE fs.id = $1", feeStructureColumns)
	var structure models.FeeStructure
	if err := r.db.GetContext(ctx, &structure, query, id); err != nil {
		return nil, err
	}
	return &structure, nil
}

// CreateStructure inserts a new fee structure.
func (r *FeeRepository) CreateStructure(ctx context.Context, structure *models.FeeStructure) error {
	if structure.ID == "" {
		structure.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	structure.CreatedAt = now
	structure.UpdatedAt = now
	const query = `INSERT INTO fee_structures (id, name, amount, fee_type, faculty_id, semester,
        academic_year, due_date, is_active, created_at, updated_at)
        VALUES (:id, :name, :amount, :fee_type, :faculty_id, :semester,
        :academic_year, :due_date, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, structure); err != nil {
		return fmt.Errorf("create fee structure: %w", err)
	}
	return nil
}

// UpdateStructure modifies an existing fee structure.
func (r *FeeRepository) UpdateStructure(ctx context.Context, structure *models.FeeStructure) error {
	structure.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fee_structures SET name = :name, amount = :amount, fee_type = :fee_type,
        faculty_id = :faculty_id, semester = :semester, academic_year = :academic_year,
        due_date = :due_date, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, structure); err != nil {
		return fmt.Errorf("update fee structure: %w", err)
	}
	return nil
}

// DeactivateStructure soft-deletes a fee structure.
func (r *FeeRepository) DeactivateStructure(ctx context.Context, id string) error {
	const query = `UPDATE fee_structures SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate fee structure: %w", err)
	}
	return nil
}

// ListPayments returns payments matching the provided filters.
func (r *FeeRepository) ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error) {
	base := "FROM fee_payments fp"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("fp.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.FeeStructureID != "" {
		conditions = append(conditions, fmt.Sprintf("fp.fee_structure_id = $%d", len(args)+1))
		args = append(args, filter.FeeStructureID)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY fp.payment_date DESC, fp.created_at DESC LIMIT %d OFFSET %d",
		feePaymentColumns, base, size, offset)

	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count fee payments: %w", err)
	}
	return payments, total, nil
}

// ListCompletedPaymentsByStudent returns the student's completed payments.
// Only completed payments count toward the paid totals.
func (r *FeeRepository) ListCompletedPaymentsByStudent(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM fee_payments fp WHERE fp.student_id = $1 AND fp.payment_status = $2 ORDER BY fp.payment_date ASC",
		feePaymentColumns)
	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, query, studentID, models.PaymentStatusCompleted); err != nil {
		return nil, fmt.Errorf("list payments by student: %w", err)
	}
	return payments, nil
}

// FindPaymentByID fetches a payment by primary key.
func (r *FeeRepository) FindPaymentByID(ctx context.Context, id string) (*models.FeePayment, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_payments fp WHERE fp.id = $1", feePaymentColumns)
	var payment models.FeePayment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExistsReceipt checks uniqueness of a receipt number.
func (r *FeeRepository) ExistsReceipt(ctx context.Context, receiptNumber string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM fee_payments WHERE receipt_number = $1 LIMIT 1", receiptNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check receipt: %w", err)
	}
	return true, nil
}

// CreatePayment records a new payment.
func (r *FeeRepository) CreatePayment(ctx context.Context, payment *models.FeePayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO fee_payments (id, student_id, fee_structure_id, amount_paid, payment_date,
        payment_method, receipt_number, payment_status, remarks, recorded_by, created_at)
        VALUES (:id, :student_id, :fee_structure_id, :amount_paid, :payment_date,
        :payment_method, :receipt_number, :payment_status, :remarks, :recorded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create fee payment: %w", err)
	}
	return nil
}

// UpdatePaymentStatus transitions a payment's status, e.g. pending to
// completed once a transfer clears.
func (r *FeeRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	const query = `UPDATE fee_payments SET payment_status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}
