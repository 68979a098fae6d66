package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

type fakeFeeStore struct {
	FeeStore
	applicable       []models.FeeStructure
	payments         []models.FeePayment
	queriedFacultyID *string
}

func (f *fakeFeeStore) ListApplicableStructures(_ context.Context, facultyID *string) ([]models.FeeStructure, error) {
	f.queriedFacultyID = facultyID
	return f.applicable, nil
}

func (f *fakeFeeStore) ListCompletedPaymentsByStudent(_ context.Context, _ string) ([]models.FeePayment, error) {
	return f.payments, nil
}

type fakeEnrollmentFaculty struct {
	enrollment *models.Enrollment
}

func (f *fakeEnrollmentFaculty) CurrentByStudent(_ context.Context, _ string) (*models.Enrollment, error) {
	if f.enrollment == nil {
		return nil, sql.ErrNoRows
	}
	return f.enrollment, nil
}

func newFeeService(fees *fakeFeeStore, enrollments *fakeEnrollmentFaculty) *FeeService {
	students := &fakeStudentIdentity{byID: map[string]*models.Student{
		"stu-1": {ID: "stu-1"},
	}}
	access := NewAccessService(&fakeTeacherScope{}, &fakeEnrollmentScope{}, students)
	roster := &fakeExportStudents{students: []models.Student{{ID: "stu-1"}}}
	svc := NewFeeService(fees, students, roster, enrollments, access, NopObserver{}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestStudentBalanceScopesToEnrollmentFaculty(t *testing.T) {
	fees := &fakeFeeStore{
		applicable: []models.FeeStructure{
			{ID: "fs1", Name: "Tuition", Amount: 1000, FeeType: models.FeeTypeSemester, IsActive: true},
		},
		payments: []models.FeePayment{
			{FeeStructureID: "fs1", AmountPaid: 400, PaymentStatus: models.PaymentStatusCompleted},
		},
	}
	enrollments := &fakeEnrollmentFaculty{enrollment: &models.Enrollment{SubjectID: "faculty-1"}}
	svc := newFeeService(fees, enrollments)

	report, err := svc.StudentBalance(context.Background(), adminClaims(), "stu-1")
	require.NoError(t, err)

	require.NotNil(t, fees.queriedFacultyID)
	assert.Equal(t, "faculty-1", *fees.queriedFacultyID)
	assert.Equal(t, 1000.0, report.TotalFees)
	assert.Equal(t, 400.0, report.TotalPaid)
	assert.Equal(t, 600.0, report.TotalPending)
	assert.Equal(t, "Partially Paid", report.Status)
}

func TestStudentBalanceWithoutEnrollmentUsesUnrestrictedStructures(t *testing.T) {
	fees := &fakeFeeStore{
		applicable: []models.FeeStructure{
			{ID: "fs1", Name: "Library Fee", Amount: 100, FeeType: models.FeeTypeAnnual, IsActive: true},
		},
	}
	svc := newFeeService(fees, &fakeEnrollmentFaculty{})

	report, err := svc.StudentBalance(context.Background(), adminClaims(), "stu-1")
	require.NoError(t, err)
	assert.Nil(t, fees.queriedFacultyID)
	assert.Equal(t, "Pending", report.Status)
}

func TestFeeReportRollsUpRoster(t *testing.T) {
	fees := &fakeFeeStore{
		applicable: []models.FeeStructure{
			{ID: "fs1", Name: "Tuition", Amount: 1000, FeeType: models.FeeTypeSemester, IsActive: true},
		},
		payments: []models.FeePayment{
			{FeeStructureID: "fs1", AmountPaid: 400, PaymentStatus: models.PaymentStatusCompleted},
		},
	}
	svc := newFeeService(fees, &fakeEnrollmentFaculty{})

	report, err := svc.Report(context.Background(), adminClaims())
	require.NoError(t, err)
	require.Len(t, report.Students, 1)
	assert.Equal(t, 1000.0, report.TotalFees)
	assert.Equal(t, 400.0, report.TotalPaid)
	assert.Equal(t, 600.0, report.TotalPending)
}

func TestStudentBalanceDeniedOutsideScope(t *testing.T) {
	svc := newFeeService(&fakeFeeStore{}, &fakeEnrollmentFaculty{})

	claims := &models.JWTClaims{UserID: "u-teacher", Role: models.RoleTeacher}
	_, err := svc.StudentBalance(context.Background(), claims, "stu-1")
	assert.Error(t, err)
}
