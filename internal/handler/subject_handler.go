package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// SubjectHandler exposes subject CRUD endpoints.
type SubjectHandler struct {
	subjects *service.SubjectService
}

// NewSubjectHandler constructs a SubjectHandler.
func NewSubjectHandler(subjects *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjects: subjects}
}

// List godoc
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or code search"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.SubjectFilter{
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
	subjects, pagination, err := h.subjects.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "subjects listed", subjects, pagination)
}

// Get godoc
// @Summary Fetch a subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.subjects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subject resolved", subject)
}

type subjectRequest struct {
	Code        string  `json:"code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Credits     int     `json:"credits"`
	MaxStudents int     `json:"max_students"`
}

// Create godoc
// @Summary Register a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body subjectRequest true "Subject"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req subjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	subject := &models.Subject{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
		MaxStudents: req.MaxStudents,
	}
	created, err := h.subjects.Create(c.Request.Context(), subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "subject created", created)
}

// Update godoc
// @Summary Update a subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject id"
// @Param payload body subjectRequest true "Subject"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req subjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	subject := &models.Subject{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
		MaxStudents: req.MaxStudents,
		IsActive:    true,
	}
	updated, err := h.subjects.Update(c.Request.Context(), c.Param("id"), subject)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "subject updated", updated)
}

// Deactivate godoc
// @Summary Deactivate a subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject id"
// @Success 204
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Deactivate(c *gin.Context) {
	if err := h.subjects.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
