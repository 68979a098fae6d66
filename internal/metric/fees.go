package metric

import (
	"time"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// Overall fee status labels.
const (
	FeeStatusPaid          = "Paid"
	FeeStatusPartiallyPaid = "Partially Paid"
	FeeStatusPending       = "Pending"
)

// StructureBalance reconciles one fee structure against its payments.
type StructureBalance struct {
	Structure     models.FeeStructure `json:"fee_structure"`
	PaidAmount    float64             `json:"paid_amount"`
	PendingAmount float64             `json:"pending_amount"`
	IsOverdue     bool                `json:"is_overdue"`
}

// FeeBalance aggregates a student's standing across all applicable structures.
type FeeBalance struct {
	TotalFees    float64            `json:"total_fees"`
	TotalPaid    float64            `json:"total_paid"`
	TotalPending float64            `json:"total_pending"`
	Status       string             `json:"status"`
	PerStructure []StructureBalance `json:"per_structure"`
}

// ComputeFeeBalance reconciles partial payments against fee structures.
// Pending amounts clamp at zero: overpayment is legal in the data model and
// must never surface as negative pending. A structure is overdue when it has
// a due date in the past and money still pending. The overall status is Paid
// only when every structure in scope is fully paid.
func ComputeFeeBalance(structures []models.FeeStructure, payments []models.FeePayment, today time.Time) FeeBalance {
	paidByStructure := make(map[string]float64, len(structures))
	for _, p := range payments {
		paidByStructure[p.FeeStructureID] += p.AmountPaid
	}

	balance := FeeBalance{PerStructure: make([]StructureBalance, 0, len(structures))}
	for _, s := range structures {
		paid := paidByStructure[s.ID]
		pending := s.Amount - paid
		if pending < 0 {
			pending = 0
		}
		overdue := s.DueDate != nil && s.DueDate.Before(today) && pending > 0

		balance.PerStructure = append(balance.PerStructure, StructureBalance{
			Structure:     s,
			PaidAmount:    paid,
			PendingAmount: pending,
			IsOverdue:     overdue,
		})
		balance.TotalFees += s.Amount
		balance.TotalPaid += paid
		balance.TotalPending += pending
	}

	switch {
	case balance.TotalPending == 0:
		balance.Status = FeeStatusPaid
	case balance.TotalPaid > 0:
		balance.Status = FeeStatusPartiallyPaid
	default:
		balance.Status = FeeStatusPending
	}
	return balance
}
