package handlers

import (
	"errors"
	"net/http"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/internal/storage"
	"EmergencyAssist/pkg/response"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) handleGetUser(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_get_user"))
		return
	}
	if user == nil {
		h.notFound(c, "user_not_found")
		return
	}
	response.JSON(c, user)
}

func (h *Handlers) handleCreateUser(c *gin.Context) {
	var in models.UserInsert
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, h.msg(c, "invalid_user_data"), err)
		return
	}
	user, err := h.store.CreateUser(c.Request.Context(), in)
	if errors.Is(err, storage.ErrDuplicateUsername) {
		response.Fail(c, http.StatusBadRequest, h.msg(c, "username_exists"))
		return
	}
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_create_user"))
		return
	}
	response.Created(c, user)
}

// handleUpdateUser 只修改请求体中出现的字段
func (h *Handlers) handleUpdateUser(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, h.msg(c, "invalid_user_data"), err)
		return
	}
	user, err := h.store.UpdateUser(c.Request.Context(), id, patch)
	if errors.Is(err, storage.ErrDuplicateUsername) {
		response.Fail(c, http.StatusBadRequest, h.msg(c, "username_exists"))
		return
	}
	if err != nil {
		response.Error(c, err, h.msg(c, "failed_update_user"))
		return
	}
	if user == nil {
		h.notFound(c, "user_not_found")
		return
	}
	response.JSON(c, user)
}
