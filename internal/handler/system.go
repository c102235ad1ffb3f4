package handlers

import (
	"context"
	"net/http"
	"time"

	"EmergencyAssist/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck 健康检查接口
func (h *Handlers) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	// 检查存储连接
	if err := h.store.Ping(ctx); err != nil {
		logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": h.msg(c, "unhealthy"),
		})
		return
	}

	// 返回健康状态
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"storage": h.storageName,
		"ai":      h.assistant.Available(),
	})
}
