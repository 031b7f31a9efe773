package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterhub/roster-api/internal/dto"
	"github.com/rosterhub/roster-api/internal/middleware"
	"github.com/rosterhub/roster-api/internal/models"
	"github.com/rosterhub/roster-api/internal/service"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
	"github.com/rosterhub/roster-api/pkg/response"
)

// ScheduleHandler exposes the schedule grid, assignments and exports.
type ScheduleHandler struct {
	roster    *service.RosterService
	schedules *service.ScheduleService
	exports   *service.ExportService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(roster *service.RosterService, schedules *service.ScheduleService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{roster: roster, schedules: schedules, exports: exports}
}

// Grid godoc
// @Summary Schedule grid
// @Description Upcoming occurrences with assigned members and pending flags
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Grid(c *gin.Context) {
	grid, cached, err := h.schedules.Grid(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, grid, middleware.ExtractMeta(c))
}

// Assign godoc
// @Summary Assign a member to a date
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.AssignRequest true "Assignment payload"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/assignments [post]
func (h *ScheduleHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	if err := h.roster.Assign(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Unassign godoc
// @Summary Remove an assignment
// @Tags Schedule
// @Produce json
// @Param date query string true "Occurrence date (YYYY-MM-DD)"
// @Param member_id query string true "Member ID"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/assignments [delete]
func (h *ScheduleHandler) Unassign(c *gin.Context) {
	if err := h.roster.Unassign(c.Request.Context(), c.Query("date"), c.Query("member_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Notify godoc
// @Summary Send notifications for a date
// @Description Mark unnotified assignments on the date as notified
// @Tags Schedule
// @Produce json
// @Param date path string true "Occurrence date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/dates/{date}/notifications [post]
func (h *ScheduleHandler) Notify(c *gin.Context) {
	res, err := h.roster.Notify(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Export godoc
// @Summary Export the schedule
// @Description Download the schedule grid as CSV or PDF
// @Tags Schedule
// @Produce octet-stream
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	file, err := h.exports.Export(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// MySchedule godoc
// @Summary Member dashboard
// @Description Read-only view of the caller's assignments
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/me [get]
func (h *ScheduleHandler) MySchedule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if claims.Role != models.RoleMember || claims.MemberID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "session is not bound to a roster member"))
		return
	}

	view, err := h.schedules.MemberView(c.Request.Context(), claims.MemberID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
