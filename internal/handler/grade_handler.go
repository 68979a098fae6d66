package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// GradeHandler exposes grade CRUD endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs a GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// List godoc
// @Summary List grades
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student filter"
// @Param subject_id query string false "Subject filter"
// @Param grade_type query string false "Assessment type filter"
// @Param semester query string false "Semester filter"
// @Param academic_year query string false "Academic year filter"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.GradeFilter{
		StudentID:    c.Query("student_id"),
		SubjectID:    c.Query("subject_id"),
		GradeType:    models.GradeType(c.Query("grade_type")),
		Semester:     c.Query("semester"),
		AcademicYear: c.Query("academic_year"),
		Page:         page,
		PageSize:     size,
	}
	grades, pagination, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "grades listed", grades, pagination)
}

// Get godoc
// @Summary Fetch a grade
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	grade, err := h.grades.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "grade resolved", grade)
}

type gradeRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	SubjectID    string  `json:"subject_id" validate:"required"`
	GradeValue   float64 `json:"grade_value"`
	LetterGrade  string  `json:"letter_grade"`
	GradeType    string  `json:"grade_type" validate:"required"`
	Weight       float64 `json:"weight"`
	Semester     string  `json:"semester" validate:"required"`
	AcademicYear string  `json:"academic_year" validate:"required"`
	DateRecorded string  `json:"date_recorded"`
	Comments     *string `json:"comments"`
}

func (r gradeRequest) toModel() (*models.Grade, error) {
	grade := &models.Grade{
		StudentID:    r.StudentID,
		SubjectID:    r.SubjectID,
		GradeValue:   r.GradeValue,
		LetterGrade:  r.LetterGrade,
		GradeType:    models.GradeType(r.GradeType),
		Weight:       r.Weight,
		Semester:     r.Semester,
		AcademicYear: r.AcademicYear,
		Comments:     r.Comments,
	}
	if r.DateRecorded != "" {
		recorded, err := time.Parse("2006-01-02", r.DateRecorded)
		if err != nil {
			return nil, invalidParam("date_recorded")
		}
		grade.DateRecorded = recorded
	}
	return grade, nil
}

// Create godoc
// @Summary Record a grade
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body gradeRequest true "Grade"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Create(c *gin.Context) {
	var req gradeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	grade, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	created, err := h.grades.Create(c.Request.Context(), grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "grade recorded", created)
}

// Update godoc
// @Summary Update a grade
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade id"
// @Param payload body gradeRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [put]
func (h *GradeHandler) Update(c *gin.Context) {
	var req gradeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	grade, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.grades.Update(c.Request.Context(), c.Param("id"), grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "grade updated", updated)
}

// Delete godoc
// @Summary Delete a grade
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Grade id"
// @Success 204
// @Router /grades/{id} [delete]
func (h *GradeHandler) Delete(c *gin.Context) {
	if err := h.grades.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
