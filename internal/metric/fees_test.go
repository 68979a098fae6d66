package metric

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

func structure(id string, amount float64, due *time.Time) models.FeeStructure {
	return models.FeeStructure{ID: id, Name: "Tuition Fee", Amount: amount, FeeType: models.FeeTypeSemester, DueDate: due, IsActive: true}
}

func payment(structureID string, amount float64) models.FeePayment {
	return models.FeePayment{FeeStructureID: structureID, AmountPaid: amount, PaymentStatus: models.PaymentStatusCompleted}
}

func TestFeeBalancePartialPayments(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := today.AddDate(0, 1, 0)

	balance := ComputeFeeBalance(
		[]models.FeeStructure{structure("fs1", 1000, &future)},
		[]models.FeePayment{payment("fs1", 400), payment("fs1", 200)},
		today,
	)

	require.Len(t, balance.PerStructure, 1)
	line := balance.PerStructure[0]
	assert.Equal(t, 600.0, line.PaidAmount)
	assert.Equal(t, 400.0, line.PendingAmount)
	assert.False(t, line.IsOverdue)
	assert.Equal(t, FeeStatusPartiallyPaid, balance.Status)
}

func TestFeeBalanceOverdue(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, -1, 0)

	balance := ComputeFeeBalance(
		[]models.FeeStructure{structure("fs1", 1000, &past)},
		[]models.FeePayment{payment("fs1", 400)},
		today,
	)

	assert.True(t, balance.PerStructure[0].IsOverdue)
}

func TestFeeBalanceFullyPaidNotOverdue(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := today.AddDate(0, -1, 0)

	balance := ComputeFeeBalance(
		[]models.FeeStructure{structure("fs1", 500, &past)},
		[]models.FeePayment{payment("fs1", 500)},
		today,
	)

	assert.Equal(t, 0.0, balance.PerStructure[0].PendingAmount)
	assert.False(t, balance.PerStructure[0].IsOverdue)
	assert.Equal(t, FeeStatusPaid, balance.Status)
}

func TestFeeBalanceOverpaymentClamps(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	balance := ComputeFeeBalance(
		[]models.FeeStructure{structure("fs1", 500, nil)},
		[]models.FeePayment{payment("fs1", 300), payment("fs1", 250)},
		today,
	)

	assert.Equal(t, 550.0, balance.PerStructure[0].PaidAmount)
	assert.Equal(t, 0.0, balance.PerStructure[0].PendingAmount)
	assert.Equal(t, FeeStatusPaid, balance.Status)
}

func TestFeeBalancePaidOnlyWhenAllStructuresClear(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	balance := ComputeFeeBalance(
		[]models.FeeStructure{structure("fs1", 500, nil), structure("fs2", 300, nil)},
		[]models.FeePayment{payment("fs1", 500)},
		today,
	)

	assert.Equal(t, 800.0, balance.TotalFees)
	assert.Equal(t, 500.0, balance.TotalPaid)
	assert.Equal(t, 300.0, balance.TotalPending)
	assert.Equal(t, FeeStatusPartiallyPaid, balance.Status)
}

func TestFeeBalanceNoPayments(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	balance := ComputeFeeBalance(
		[]models.FeeStructure{structure("fs1", 500, nil)},
		nil,
		today,
	)

	assert.Equal(t, FeeStatusPending, balance.Status)
}
