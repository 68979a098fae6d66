package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// FeeHandler exposes fee structure, payment and balance endpoints.
type FeeHandler struct {
	fees *service.FeeService
}

// NewFeeHandler constructs a FeeHandler.
func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// StudentBalance godoc
// @Summary Compute a student's fee balance
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/fees [get]
func (h *FeeHandler) StudentBalance(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.fees.StudentBalance(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "fee balance computed", report)
}

// Report godoc
// @Summary Roll fee balances up across the caller's visible roster
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /fees/report [get]
func (h *FeeHandler) Report(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.fees.Report(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "fee report computed", report)
}

// ListStructures godoc
// @Summary List fee structures
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param faculty_id query string false "Faculty subject filter"
// @Param fee_type query string false "Fee type filter"
// @Param academic_year query string false "Academic year filter"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /fees/structures [get]
func (h *FeeHandler) ListStructures(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.FeeStructureFilter{
		FacultyID:    c.Query("faculty_id"),
		FeeType:      models.FeeType(c.Query("fee_type")),
		AcademicYear: c.Query("academic_year"),
		Page:         page,
		PageSize:     size,
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, invalidParam("active"))
			return
		}
		filter.Active = &active
	}
	structures, pagination, err := h.fees.ListStructures(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "fee structures listed", structures, pagination)
}

type feeStructureRequest struct {
	Name         string  `json:"name" validate:"required"`
	Amount       float64 `json:"amount" validate:"required"`
	FeeType      string  `json:"fee_type" validate:"required"`
	FacultyID    *string `json:"faculty_id"`
	Semester     *string `json:"semester"`
	AcademicYear *string `json:"academic_year"`
	DueDate      *string `json:"due_date"`
}

func (r feeStructureRequest) toModel() (*models.FeeStructure, error) {
	structure := &models.FeeStructure{
		Name:         r.Name,
		Amount:       r.Amount,
		FeeType:      models.FeeType(r.FeeType),
		FacultyID:    r.FacultyID,
		Semester:     r.Semester,
		AcademicYear: r.AcademicYear,
	}
	if r.DueDate != nil && *r.DueDate != "" {
		due, err := time.Parse("2006-01-02", *r.DueDate)
		if err != nil {
			return nil, invalidParam("due_date")
		}
		structure.DueDate = &due
	}
	return structure, nil
}

// CreateStructure godoc
// @Summary Register a fee structure
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body feeStructureRequest true "Fee structure"
// @Success 201 {object} response.Envelope
// @Router /fees/structures [post]
func (h *FeeHandler) CreateStructure(c *gin.Context) {
	var req feeStructureRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	structure, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	created, err := h.fees.CreateStructure(c.Request.Context(), structure)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "fee structure created", created)
}

// UpdateStructure godoc
// @Summary Update a fee structure
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee structure id"
// @Param payload body feeStructureRequest true "Fee structure"
// @Success 200 {object} response.Envelope
// @Router /fees/structures/{id} [put]
func (h *FeeHandler) UpdateStructure(c *gin.Context) {
	var req feeStructureRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	structure, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	structure.IsActive = true
	updated, err := h.fees.UpdateStructure(c.Request.Context(), c.Param("id"), structure)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "fee structure updated", updated)
}

// DeactivateStructure godoc
// @Summary Deactivate a fee structure
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee structure id"
// @Success 204
// @Router /fees/structures/{id} [delete]
func (h *FeeHandler) DeactivateStructure(c *gin.Context) {
	if err := h.fees.DeactivateStructure(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListPayments godoc
// @Summary List fee payments
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student filter"
// @Param fee_structure_id query string false "Fee structure filter"
// @Success 200 {object} response.Envelope
// @Router /fees/payments [get]
func (h *FeeHandler) ListPayments(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.FeePaymentFilter{
		StudentID:      c.Query("student_id"),
		FeeStructureID: c.Query("fee_structure_id"),
		Page:           page,
		PageSize:       size,
	}
	payments, pagination, err := h.fees.ListPayments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "payments listed", payments, pagination)
}

type recordPaymentRequest struct {
	StudentID      string  `json:"student_id" validate:"required"`
	FeeStructureID string  `json:"fee_structure_id" validate:"required"`
	AmountPaid     float64 `json:"amount_paid" validate:"required"`
	PaymentDate    string  `json:"payment_date"`
	PaymentMethod  string  `json:"payment_method" validate:"required"`
	ReceiptNumber  string  `json:"receipt_number" validate:"required"`
	Remarks        *string `json:"remarks"`
}

// RecordPayment godoc
// @Summary Record a fee payment
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body recordPaymentRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /fees/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req recordPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	recordedBy := principal.UserID
	payment := &models.FeePayment{
		StudentID:      req.StudentID,
		FeeStructureID: req.FeeStructureID,
		AmountPaid:     req.AmountPaid,
		PaymentMethod:  req.PaymentMethod,
		ReceiptNumber:  req.ReceiptNumber,
		Remarks:        req.Remarks,
		RecordedBy:     &recordedBy,
	}
	if req.PaymentDate != "" {
		date, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			response.Error(c, invalidParam("payment_date"))
			return
		}
		payment.PaymentDate = date
	}
	created, err := h.fees.RecordPayment(c.Request.Context(), payment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "payment recorded", created)
}
