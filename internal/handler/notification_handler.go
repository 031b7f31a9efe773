package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterhub/roster-api/internal/service"
	"github.com/rosterhub/roster-api/pkg/response"
)

// NotificationHandler exposes the notification log.
type NotificationHandler struct {
	service *service.RosterService
}

// NewNotificationHandler creates a new handler.
func NewNotificationHandler(svc *service.RosterService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary Notification log
// @Description Notification records, most recent first
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	records := h.service.Notifications(c.Request.Context())
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"count": len(records)})
}
