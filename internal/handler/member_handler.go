package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterhub/roster-api/internal/dto"
	"github.com/rosterhub/roster-api/internal/service"
	appErrors "github.com/rosterhub/roster-api/pkg/errors"
	"github.com/rosterhub/roster-api/pkg/response"
)

// MemberHandler exposes the roster member registry.
type MemberHandler struct {
	service *service.RosterService
}

// NewMemberHandler creates a new handler.
func NewMemberHandler(svc *service.RosterService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// List godoc
// @Summary List roster members
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	members := h.service.Members(c.Request.Context())
	response.JSON(c, http.StatusOK, members, map[string]interface{}{"count": len(members)})
}

// Create godoc
// @Summary Add a roster member
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body dto.AddMemberRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid member payload"))
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// Delete godoc
// @Summary Remove a roster member
// @Description Remove a member and every assignment referencing them
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.service.RemoveMember(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
