package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// CalendarHandler exposes calendar event and academic year endpoints.
type CalendarHandler struct {
	calendar *service.CalendarService
}

// NewCalendarHandler constructs a CalendarHandler.
func NewCalendarHandler(calendar *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// ListEvents godoc
// @Summary List calendar events
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.CalendarFilter{Page: page, PageSize: size}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, invalidParam("from"))
			return
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, invalidParam("to"))
			return
		}
		filter.To = &to
	}
	events, pagination, err := h.calendar.ListEvents(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, 200, "events listed", events, pagination)
}

type calendarEventRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	EventType   string  `json:"event_type"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     *string `json:"end_date"`
	Audience    string  `json:"audience"`
}

func (r calendarEventRequest) toModel() (*models.CalendarEvent, error) {
	start, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return nil, invalidParam("start_date")
	}
	event := &models.CalendarEvent{
		Title:       r.Title,
		Description: r.Description,
		EventType:   r.EventType,
		StartDate:   start,
		Audience:    r.Audience,
	}
	if r.EndDate != nil && *r.EndDate != "" {
		end, err := time.Parse("2006-01-02", *r.EndDate)
		if err != nil {
			return nil, invalidParam("end_date")
		}
		event.EndDate = &end
	}
	return event, nil
}

// CreateEvent godoc
// @Summary Register a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body calendarEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Router /events [post]
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	principal, err := claims(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req calendarEventRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	event, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	createdBy := principal.UserID
	event.CreatedBy = &createdBy
	created, err := h.calendar.CreateEvent(c.Request.Context(), event)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "event created", created)
}

// UpdateEvent godoc
// @Summary Update a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Param payload body calendarEventRequest true "Event"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [put]
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	var req calendarEventRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	event, err := req.toModel()
	if err != nil {
		response.Error(c, err)
		return
	}
	updated, err := h.calendar.UpdateEvent(c.Request.Context(), c.Param("id"), event)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "event updated", updated)
}

// DeleteEvent godoc
// @Summary Delete a calendar event
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Success 204
// @Router /events/{id} [delete]
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	if err := h.calendar.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAcademicYears godoc
// @Summary List academic years
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *CalendarHandler) ListAcademicYears(c *gin.Context) {
	years, err := h.calendar.ListAcademicYears(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "academic years listed", years)
}

// CurrentAcademicYear godoc
// @Summary Fetch the current academic year
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /academic-years/current [get]
func (h *CalendarHandler) CurrentAcademicYear(c *gin.Context) {
	year, err := h.calendar.CurrentAcademicYear(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "current academic year", year)
}

type academicYearRequest struct {
	Year      string `json:"year" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	IsCurrent bool   `json:"is_current"`
}

// CreateAcademicYear godoc
// @Summary Register an academic year
// @Tags calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body academicYearRequest true "Academic year"
// @Success 201 {object} response.Envelope
// @Router /academic-years [post]
func (h *CalendarHandler) CreateAcademicYear(c *gin.Context) {
	var req academicYearRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		response.Error(c, invalidParam("start_date"))
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		response.Error(c, invalidParam("end_date"))
		return
	}
	year := &models.AcademicYear{
		Year:      req.Year,
		StartDate: start,
		EndDate:   end,
		IsCurrent: req.IsCurrent,
	}
	created, err := h.calendar.CreateAcademicYear(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "academic year created", created)
}

// SetCurrentAcademicYear godoc
// @Summary Make an academic year the current one
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param id path string true "Academic year id"
// @Success 204
// @Router /academic-years/{id}/current [patch]
func (h *CalendarHandler) SetCurrentAcademicYear(c *gin.Context) {
	if err := h.calendar.SetCurrentAcademicYear(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
