package projects

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/teamgrid/backend/internal/membership"
	"github.com/teamgrid/backend/pkg/response"
)

// Handler handles project membership HTTP endpoints.
type Handler struct {
	service *Service
	cache   *Cache
	logger  *zap.Logger
}

// NewHandler creates a projects handler. cache may be nil when Redis is not
// configured.
func NewHandler(service *Service, cache *Cache, logger *zap.Logger) *Handler {
	return &Handler{service: service, cache: cache, logger: logger}
}

// AddUsersRequest is the body for POST /projects/:id/members.
type AddUsersRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1,dive,gt=0"`
}

// AddGroupsRequest is the body for POST /projects/:id/groups.
type AddGroupsRequest struct {
	GroupIDs []int64 `json:"group_ids" binding:"required,min=1,dive,gt=0"`
}

// ListMembers handles GET /projects/:id/members. Returns the project's
// effective members flattened across the group hierarchy.
func (h *Handler) ListMembers(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if overview, hit := h.cache.GetOverview(ctx, projectID); hit {
		response.OK(c, overview)
		return
	}
	overview, err := h.service.ListMembers(ctx, projectID)
	if err != nil {
		h.fail(c, "list project members", err)
		return
	}
	h.cache.SetOverview(ctx, projectID, overview)
	response.OK(c, overview)
}

// AddUsers handles POST /projects/:id/members.
func (h *Handler) AddUsers(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body AddUsersRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_ids must be a non-empty array of positive ids")
		return
	}
	added, err := h.service.AddUsers(c.Request.Context(), projectID, body.UserIDs)
	if err != nil {
		h.fail(c, "add users to project", err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), projectID)
	response.Created(c, added)
}

// AddGroups handles POST /projects/:id/groups.
func (h *Handler) AddGroups(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body AddGroupsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "group_ids must be a non-empty array of positive ids")
		return
	}
	attached, err := h.service.AddGroups(c.Request.Context(), projectID, body.GroupIDs)
	if err != nil {
		h.fail(c, "add groups to project", err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), projectID)
	response.Created(c, attached)
}

// RemoveUser handles DELETE /projects/:id/members/:userId.
func (h *Handler) RemoveUser(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	removed, err := h.service.RemoveUser(c.Request.Context(), projectID, userID)
	if err != nil {
		h.fail(c, "remove user from project", err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), projectID)
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
