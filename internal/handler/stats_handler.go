package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-api/internal/service"
	"github.com/noah-isme/campus-admin-api/pkg/response"
)

// StatsHandler exposes dashboard aggregate endpoints.
type StatsHandler struct {
	dashboard *service.DashboardService
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(dashboard *service.DashboardService) *StatsHandler {
	return &StatsHandler{dashboard: dashboard}
}

// Dashboard godoc
// @Summary Dashboard overview statistics
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "dashboard statistics", stats)
}

// AttendanceTrend godoc
// @Summary Daily attendance trend
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param days query int false "Trailing window in days (max 365)"
// @Success 200 {object} response.Envelope
// @Router /stats/attendance-trend [get]
func (h *StatsHandler) AttendanceTrend(c *gin.Context) {
	days := intQuery(c, "days", 0)
	trend, err := h.dashboard.AttendanceTrend(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "attendance trend", trend)
}
