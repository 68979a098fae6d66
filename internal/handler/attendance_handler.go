package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// AttendanceHandler exposes attendance recording endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// List godoc
// @Summary List attendance records
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student filter"
// @Param status query string false "Status filter"
// @Param date_from query string false "Window start (YYYY-MM-DD)"
// @Param date_to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.AttendanceFilter{
		StudentID: c.Query("student_id"),
		Page:      page,
		PageSize:  size,
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AttendanceStatus(raw)
		if !status.Valid() {
			response.Error(c, invalidParam("status"))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, invalidParam("date_from"))
			return
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, invalidParam("date_to"))
			return
		}
		filter.DateTo = &to
	}

	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "attendance listed", records, pagination)
}

type recordAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Date      string  `json:"date" validate:"required"`
	Status    string  `json:"status" validate:"required"`
	Period    *string `json:"period"`
	Notes     *string `json:"notes"`
}

// Record godoc
// @Summary Record attendance for a student
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body recordAttendanceRequest true "Attendance"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req recordAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, invalidParam("date"))
		return
	}

	recordedBy := principal.UserID
	record := &models.Attendance{
		StudentID:  req.StudentID,
		Date:       date,
		Status:     models.AttendanceStatus(req.Status),
		Period:     req.Period,
		Notes:      req.Notes,
		RecordedBy: &recordedBy,
	}
	saved, err := h.attendance.Record(c.Request.Context(), record)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "attendance recorded", saved)
}

type updateAttendanceRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

// Update godoc
// @Summary Correct an attendance record
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance id"
// @Param payload body updateAttendanceRequest true "Correction"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req updateAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.attendance.Update(c.Request.Context(), c.Param("id"), models.AttendanceStatus(req.Status), req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "attendance updated", updated)
}

// Delete godoc
// @Summary Delete an attendance record
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path string true "Attendance id"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
