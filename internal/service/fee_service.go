package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/metric"
	"github.com/noah-isme/campus-admin-api/internal/models"
	apperrors "github.com/noah-isme/campus-admin-api/pkg/errors"
)

// FeeStore is the persistence surface for fee structures and payments.
type FeeStore interface {
	ListStructures(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructure, int, error)
	ListApplicableStructures(ctx context.Context, facultyID *string) ([]models.FeeStructure, error)
	FindStructureByID(ctx context.Context, id string) (*models.FeeStructure, error)
	CreateStructure(ctx context.Context, structure *models.FeeStructure) error
	UpdateStructure(ctx context.Context, structure *models.FeeStructure) error
	DeactivateStructure(ctx context.Context, id string) error
	ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error)
	ListCompletedPaymentsByStudent(ctx context.Context, studentID string) ([]models.FeePayment, error)
	ExistsReceipt(ctx context.Context, receiptNumber string) (bool, error)
	CreatePayment(ctx context.Context, payment *models.FeePayment) error
}

// EnrollmentFacultyReader picks the enrollment that determines a student's
// faculty for fee scoping.
type EnrollmentFacultyReader interface {
	CurrentByStudent(ctx context.Context, studentID string) (*models.Enrollment, error)
}

// StudentRosterLister pages through the student roster for roster-wide
// fee reporting.
type StudentRosterLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

// StudentFeeReport is the per-student balance payload.
type StudentFeeReport struct {
	StudentID    string                    `json:"student_id"`
	TotalFees    float64                   `json:"total_fees"`
	TotalPaid    float64                   `json:"total_paid"`
	TotalPending float64                   `json:"total_pending"`
	Status       string                    `json:"status"`
	Structures   []metric.StructureBalance `json:"structures"`
}

// FeeReport rolls per-student balances up across the caller's visible roster.
type FeeReport struct {
	Students     []StudentFeeReport `json:"students"`
	TotalFees    float64            `json:"total_fees"`
	TotalPaid    float64            `json:"total_paid"`
	TotalPending float64            `json:"total_pending"`
}

// FeeService computes fee balances and manages structures and payments.
type FeeService struct {
	fees        FeeStore
	students    StudentIdentityReader
	roster      StudentRosterLister
	enrollments EnrollmentFacultyReader
	access      *AccessService
	observer    EntityObserver
	logger      *zap.Logger
	now         func() time.Time
}

// NewFeeService constructs a FeeService.
func NewFeeService(fees FeeStore, students StudentIdentityReader, roster StudentRosterLister, enrollments EnrollmentFacultyReader, access *AccessService, observer EntityObserver, logger *zap.Logger) *FeeService {
	return &FeeService{fees: fees, students: students, roster: roster, enrollments: enrollments, access: access, observer: observer, logger: logger, now: time.Now}
}

// StudentBalance computes the fee balance for one student. Applicable
// structures are the active unrestricted ones plus those scoped to the
// faculty of the student's current enrollment; without an active enrollment
// only unrestricted structures apply.
func (s *FeeService) StudentBalance(ctx context.Context, claims *models.JWTClaims, studentID string) (*StudentFeeReport, error) {
	allowed, err := s.access.CanAccessStudent(ctx, claims, studentID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "scope resolution failed")
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}

	return s.balanceFor(ctx, studentID)
}

func (s *FeeService) balanceFor(ctx context.Context, studentID string) (*StudentFeeReport, error) {
	var facultyID *string
	enrollment, err := s.enrollments.CurrentByStudent(ctx, studentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "enrollment lookup failed")
		}
	} else {
		facultyID = &enrollment.SubjectID
	}

	structures, err := s.fees.ListApplicableStructures(ctx, facultyID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure lookup failed")
	}
	payments, err := s.fees.ListCompletedPaymentsByStudent(ctx, studentID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "payment lookup failed")
	}

	balance := metric.ComputeFeeBalance(structures, payments, s.now().UTC())
	return &StudentFeeReport{
		StudentID:    studentID,
		TotalFees:    balance.TotalFees,
		TotalPaid:    balance.TotalPaid,
		TotalPending: balance.TotalPending,
		Status:       balance.Status,
		Structures:   balance.PerStructure,
	}, nil
}

// Report rolls fee balances up over every student the caller may see.
// Admins cover the whole roster, teachers the students enrolled in their
// assigned subjects, students only themselves.
func (s *FeeService) Report(ctx context.Context, claims *models.JWTClaims) (*FeeReport, error) {
	ids, restricted, err := s.access.AccessibleStudentIDs(ctx, claims)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "scope resolution failed")
	}
	if !restricted {
		ids, err = s.allStudentIDs(ctx)
		if err != nil {
			return nil, err
		}
	}

	report := &FeeReport{Students: make([]StudentFeeReport, 0, len(ids))}
	for _, id := range ids {
		balance, err := s.balanceFor(ctx, id)
		if err != nil {
			return nil, err
		}
		report.Students = append(report.Students, *balance)
		report.TotalFees += balance.TotalFees
		report.TotalPaid += balance.TotalPaid
		report.TotalPending += balance.TotalPending
	}
	return report, nil
}

func (s *FeeService) allStudentIDs(ctx context.Context) ([]string, error) {
	const pageSize = 200
	var ids []string
	for page := 1; ; page++ {
		students, total, err := s.roster.List(ctx, models.StudentFilter{Page: page, PageSize: pageSize})
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "roster listing failed")
		}
		for _, student := range students {
			ids = append(ids, student.ID)
		}
		if len(students) == 0 || len(ids) >= total {
			break
		}
	}
	return ids, nil
}

// ListStructures returns fee structures matching the filter.
func (s *FeeService) ListStructures(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructure, *models.Pagination, error) {
	structures, total, err := s.fees.ListStructures(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure listing failed")
	}
	return structures, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// CreateStructure registers a new fee structure.
func (s *FeeService) CreateStructure(ctx context.Context, structure *models.FeeStructure) (*models.FeeStructure, error) {
	var details []string
	if structure.Name == "" {
		details = append(details, "name is required")
	}
	if structure.Amount <= 0 {
		details = append(details, "amount must be positive")
	}
	if !structure.FeeType.Valid() {
		details = append(details, "invalid fee_type")
	}
	if len(details) > 0 {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, details...)
	}
	structure.IsActive = true
	if err := s.fees.CreateStructure(ctx, structure); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure creation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "fee_structure", EntityID: structure.ID, Action: "created"})
	return structure, nil
}

// UpdateStructure modifies an existing fee structure.
func (s *FeeService) UpdateStructure(ctx context.Context, id string, updated *models.FeeStructure) (*models.FeeStructure, error) {
	current, err := s.fees.FindStructureByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure lookup failed")
	}
	if !updated.FeeType.Valid() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, "invalid fee_type")
	}
	updated.ID = current.ID
	if err := s.fees.UpdateStructure(ctx, updated); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure update failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "fee_structure", EntityID: id, Action: "updated"})
	return updated, nil
}

// DeactivateStructure soft-deletes a fee structure. Past payments keep
// referencing it; it simply stops appearing in future balances.
func (s *FeeService) DeactivateStructure(ctx context.Context, id string) error {
	if _, err := s.fees.FindStructureByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure lookup failed")
	}
	if err := s.fees.DeactivateStructure(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure deactivation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "fee_structure", EntityID: id, Action: "deactivated"})
	return nil
}

// ListPayments returns payments matching the filter.
func (s *FeeService) ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, *models.Pagination, error) {
	payments, total, err := s.fees.ListPayments(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "payment listing failed")
	}
	return payments, models.NewPagination(normalizePage(filter.Page), normalizeSize(filter.PageSize), total), nil
}

// RecordPayment registers a payment against a fee structure. The receipt
// number must be unique across all payments.
func (s *FeeService) RecordPayment(ctx context.Context, payment *models.FeePayment) (*models.FeePayment, error) {
	var details []string
	if payment.AmountPaid <= 0 {
		details = append(details, "amount_paid must be positive")
	}
	if payment.ReceiptNumber == "" {
		details = append(details, "receipt_number is required")
	}
	if len(details) > 0 {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, details...)
	}

	if _, err := s.students.FindByID(ctx, payment.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "student not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "student lookup failed")
	}
	if _, err := s.fees.FindStructureByID(ctx, payment.FeeStructureID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "fee structure not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "fee structure lookup failed")
	}

	exists, err := s.fees.ExistsReceipt(ctx, payment.ReceiptNumber)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "receipt check failed")
	}
	if exists {
		return nil, apperrors.Clone(apperrors.ErrConflict, "receipt number already used")
	}

	if payment.PaymentStatus == "" {
		payment.PaymentStatus = models.PaymentStatusCompleted
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = s.now().UTC()
	}
	if err := s.fees.CreatePayment(ctx, payment); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrPersistence.Code, apperrors.ErrPersistence.Status, "payment creation failed")
	}
	s.observer.Notify(ctx, EntityEvent{Entity: "fee_payment", EntityID: payment.ID, Action: "created"})
	return payment, nil
}
