package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// StudentHandler exposes the student resource.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students visible to the caller
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param per_page query int false "Page size"
// @Param search query string false "Name or student id search"
// @Param grade_level query string false "Year level filter"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, size := pageParams(c)
	filter := models.StudentFilter{
		Search:     c.Query("search"),
		GradeLevel: c.Query("grade_level"),
		Page:       page,
		PageSize:   size,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.StudentStatus(raw)
		if !status.Valid() {
			response.Error(c, invalidParam("status"))
			return
		}
		filter.Status = &status
	}

	students, pagination, err := h.students.List(c.Request.Context(), principal, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "students listed", students, pagination)
}

// Get godoc
// @Summary Fetch a student with derived metrics
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.students.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "student resolved", detail)
}

type createStudentRequest struct {
	StudentID  string  `json:"student_id" validate:"required"`
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	GradeLevel string  `json:"grade_level" validate:"required"`
	Status     string  `json:"status"`
}

// Create godoc
// @Summary Register a new student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body createStudentRequest true "Student"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req createStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	student := &models.Student{
		StudentID:  req.StudentID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		GradeLevel: req.GradeLevel,
		Status:     models.StudentStatus(req.Status),
	}
	if req.Status == "" {
		student.Status = models.StudentStatusActive
	}
	created, err := h.students.Create(c.Request.Context(), student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "student created", created)
}

// Update godoc
// @Summary Update a student record
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Param payload body createStudentRequest true "Student"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req createStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	student := &models.Student{
		StudentID:  req.StudentID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		GradeLevel: req.GradeLevel,
		Status:     models.StudentStatus(req.Status),
	}
	updated, err := h.students.Update(c.Request.Context(), c.Param("id"), student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "student updated", updated)
}

// UpdateProfile godoc
// @Summary Update the self-service profile subset
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Param payload body service.StudentUpdateProfileRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/{id}/profile [put]
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.StudentUpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.students.UpdateProfile(c.Request.Context(), principal, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "profile updated", updated)
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus godoc
// @Summary Transition a student's lifecycle status
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Param payload body setStatusRequest true "Status"
// @Success 204
// @Router /students/{id}/status [patch]
func (h *StudentHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.students.SetStatus(c.Request.Context(), c.Param("id"), models.StudentStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
