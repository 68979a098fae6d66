package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// TeacherHandler exposes teacher profile and assignment endpoints.
type TeacherHandler struct {
	teachers *service.TeacherService
}

// NewTeacherHandler constructs a TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

// List godoc
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or id search"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.TeacherFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: size,
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, invalidParam("active"))
			return
		}
		filter.Active = &active
	}
	teachers, pagination, err := h.teachers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "teachers listed", teachers, pagination)
}

type teacherDetail struct {
	*models.Teacher
	SubjectIDs []string `json:"subject_ids"`
}

// Get godoc
// @Summary Fetch a teacher with subject assignments
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, subjectIDs, err := h.teachers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "teacher resolved", teacherDetail{Teacher: teacher, SubjectIDs: subjectIDs})
}

type teacherRequest struct {
	TeacherID      string  `json:"teacher_id" validate:"required"`
	UserID         *string `json:"user_id"`
	FirstName      string  `json:"first_name" validate:"required"`
	LastName       string  `json:"last_name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Phone          *string `json:"phone"`
	Department     *string `json:"department"`
	Specialization *string `json:"specialization"`
	Qualification  *string `json:"qualification"`
	HireDate       *string `json:"hire_date"`
}

func (r teacherRequest) toModel() (*models.Teacher, error) {
	teacher := &models.Teacher{
		TeacherID:      r.TeacherID,
		UserID:         r.UserID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		Department:     r.Department,
		Specialization: r.Specialization,
		Qualification:  r.Qualification,
	}
	if r.HireDate != nil && *r.HireDate != "" {
		hired, err := time.Parse("2006-01-02", *r.HireDate)
		if err != nil {
			return nil, invalidParam("hire_date")
		}
		teacher.HireDate = &hired
	}
	return teacher, nil
}

// Create godoc
// @Summary Register a teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body teacherRequest true "Teacher"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *TeacherHandler) Create(c *gin.Context) {
	var req teacherRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	created, err := h.teachers.Create(c.Request.Context(), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "teacher created", created)
}

// Update godoc
// @Summary Update a teacher profile
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher id"
// @Param payload body teacherRequest true "Teacher"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [put]
func (h *TeacherHandler) Update(c *gin.Context) {
	var req teacherRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	teacher.Active = true
	updated, err := h.teachers.Update(c.Request.Context(), c.Param("id"), teacher)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "teacher updated", updated)
}

type assignSubjectRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// AssignSubject godoc
// @Summary Assign a subject to a teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher id"
// @Param payload body assignSubjectRequest true "Subject"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /teachers/{id}/subjects [post]
func (h *TeacherHandler) AssignSubject(c *gin.Context) {
	var req assignSubjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.teachers.AssignSubject(c.Request.Context(), c.Param("id"), req.SubjectID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnassignSubject godoc
// @Summary Remove a subject assignment from a teacher
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher id"
// @Param subjectId path string true "Subject id"
// @Success 204
// @Router /teachers/{id}/subjects/{subjectId} [delete]
func (h *TeacherHandler) UnassignSubject(c *gin.Context) {
	if err := h.teachers.UnassignSubject(c.Request.Context(), c.Param("id"), c.Param("subjectId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
