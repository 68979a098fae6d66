package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// EnrollmentHandler exposes enrollment lifecycle endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student filter"
// @Param subject_id query string false "Subject filter"
// @Param status query string false "Status filter"
// @Param semester query string false "Semester filter"
// @Param academic_year query string false "Academic year filter"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.EnrollmentFilter{
		StudentID:    c.Query("student_id"),
		SubjectID:    c.Query("subject_id"),
		Status:       models.EnrollmentStatus(c.Query("status")),
		Semester:     c.Query("semester"),
		AcademicYear: c.Query("academic_year"),
		Page:         page,
		PageSize:     size,
	}
	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "enrollments listed", enrollments, pagination)
}

type enrollRequest struct {
	StudentID      string `json:"student_id" validate:"required"`
	SubjectID      string `json:"subject_id" validate:"required"`
	Semester       string `json:"semester" validate:"required"`
	AcademicYear   string `json:"academic_year" validate:"required"`
	EnrollmentDate string `json:"enrollment_date"`
}

// Enroll godoc
// @Summary Enroll a student in a subject
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body enrollRequest true "Enrollment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	enrollment := &models.Enrollment{
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
	}
	if req.EnrollmentDate != "" {
		date, err := time.Parse("2006-01-02", req.EnrollmentDate)
		if err != nil {
			response.Error(c, invalidParam("enrollment_date"))
			return
		}
		enrollment.EnrollmentDate = date
	}
	created, err := h.enrollments.Enroll(c.Request.Context(), enrollment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "student enrolled", created)
}

type enrollmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus godoc
// @Summary Transition an enrollment's status
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment id"
// @Param payload body enrollmentStatusRequest true "Status"
// @Success 204
// @Router /enrollments/{id}/status [patch]
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	var req enrollmentStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.UpdateStatus(c.Request.Context(), c.Param("id"), models.EnrollmentStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
