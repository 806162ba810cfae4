package groups

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teamgrid/backend/internal/membership"
	"github.com/teamgrid/backend/pkg/response"
)

// Handler handles group membership HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a groups handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// AddUsersRequest is the body for POST /groups/:id/members.
type AddUsersRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1,dive,gt=0"`
}

// AddSubGroupsRequest is the body for POST /groups/:id/subgroups.
type AddSubGroupsRequest struct {
	GroupIDs []int64 `json:"group_ids" binding:"required,min=1,dive,gt=0"`
}

// AddUsers handles POST /groups/:id/members. Adds a batch of users as direct
// members of the group.
func (h *Handler) AddUsers(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body AddUsersRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_ids must be a non-empty array of positive ids")
		return
	}
	added, err := h.service.AddUsers(c.Request.Context(), groupID, body.UserIDs)
	if err != nil {
		h.fail(c, "add users to group", err)
		return
	}
	response.Created(c, added)
}

// AddSubGroups handles POST /groups/:id/subgroups. Attaches a batch of
// groups as direct children of the group.
func (h *Handler) AddSubGroups(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body AddSubGroupsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "group_ids must be a non-empty array of positive ids")
		return
	}
	attached, err := h.service.AddSubGroups(c.Request.Context(), groupID, body.GroupIDs)
	if err != nil {
		h.fail(c, "add sub-groups", err)
		return
	}
	response.Created(c, attached)
}

// RemoveUser handles DELETE /groups/:id/members/:userId.
func (h *Handler) RemoveUser(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	removed, err := h.service.RemoveUser(c.Request.Context(), groupID, userID)
	if err != nil {
		h.fail(c, "remove user from group", err)
		return
	}
	response.OK(c, removed)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	if membership.KindOf(err) == 0 {
		h.logger.Error(op, zap.Error(err))
	}
	response.Error(c, err)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
