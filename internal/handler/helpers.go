package handlers

import (
	"net/http"
	"strconv"

	apperrors "EmergencyAssist/pkg/errors"
	"EmergencyAssist/pkg/middleware"
	"EmergencyAssist/pkg/response"

	"github.com/gin-gonic/gin"
)

// msg 按请求语言取提示文本
func (h *Handlers) msg(c *gin.Context, key string) string {
	return h.i18n.T(middleware.Lang(c), key, nil)
}

// notFound 输出 404，消息按请求语言翻译
func (h *Handlers) notFound(c *gin.Context, key string) {
	response.Error(c, apperrors.NotFound(h.msg(c, key)), "")
}

// parseID 解析路径参数，失败时已写出 400
func (h *Handlers) parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, h.msg(c, "invalid_id"))
		return 0, false
	}
	return uint(id), true
}
