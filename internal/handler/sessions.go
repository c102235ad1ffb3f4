package handlers

import (
	"net/http"
	"time"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) handleCreateSession(c *gin.Context) {
	var in models.SessionInsert
	// 会话没有必填字段，空请求体也可以创建
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			response.BindError(c, h.msg(c, "invalid_session_data"), err)
			return
		}
	}
	sess, err := h.store.CreateUserSession(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_create_session"))
		return
	}
	response.Created(c, sess)
}

func (h *Handlers) handleGetSession(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	sess, err := h.store.GetUserSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_session"))
		return
	}
	if sess == nil {
		h.notFound(c, "session_not_found")
		return
	}
	response.JSON(c, sess)
}

func (h *Handlers) handleListUserSessions(c *gin.Context) {
	userID, ok := h.parseID(c, "userId")
	if !ok {
		return
	}
	list, err := h.store.GetUserSessionsByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_sessions"))
		return
	}
	response.JSON(c, list)
}

// handleUpdateSession actions 出现时整体替换
func (h *Handlers) handleUpdateSession(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var patch models.SessionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, h.msg(c, "invalid_session_data"), err)
		return
	}
	h.writeSession(c, func() (*models.UserSession, error) {
		return h.store.UpdateUserSession(c.Request.Context(), id, patch)
	}, http.StatusOK)
}

// handleAppendAction 追加单个操作，避免客户端整体覆盖 actions 时丢失并发写入
func (h *Handlers) handleAppendAction(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var in models.ActionInsert
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, h.msg(c, "invalid_action_data"), err)
		return
	}
	h.writeSession(c, func() (*models.UserSession, error) {
		return h.store.AppendUserSessionAction(c.Request.Context(), id, in.NewAction(time.Now()))
	}, http.StatusCreated)
}

// handleEndSession 已结束的会话保持原结束时间
func (h *Handlers) handleEndSession(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	h.writeSession(c, func() (*models.UserSession, error) {
		return h.store.EndUserSession(c.Request.Context(), id)
	}, http.StatusOK)
}

// handleSessionEvents 以 SSE 推送会话的新操作与结束事件
func (h *Handlers) handleSessionEvents(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	sess, err := h.store.GetUserSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_session"))
		return
	}
	if sess == nil {
		h.notFound(c, "session_not_found")
		return
	}
	h.events.Serve(c, models.SessionTopic(id))
}

func (h *Handlers) writeSession(c *gin.Context, fn func() (*models.UserSession, error), status int) {
	sess, err := fn()
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_update_session"))
		return
	}
	if sess == nil {
		h.notFound(c, "session_not_found")
		return
	}
	c.JSON(status, sess)
}
