package middleware

import (
	"net/http"
	"strings"
	"time"

	"EmergencyAssist/pkg/cache"
	apperrors "EmergencyAssist/pkg/errors"
	"EmergencyAssist/pkg/response"

	"github.com/gin-gonic/gin"
)

type IdempotencyConfig struct {
	HeaderName string        // 默认 Idempotency-Key
	TTL        time.Duration // 重复请求的拒绝窗口
	Store      cache.Cache
}

// IdempotencyMiddleware 仅在请求携带幂等键时生效，窗口内重复的键返回 409
func IdempotencyMiddleware(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "Idempotency-Key"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewGoCache(cache.LocalConfig{DefaultExpiration: cfg.TTL, CleanupInterval: time.Minute})
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(cfg.HeaderName))
		if key == "" {
			c.Next()
			return
		}
		storeKey := "idem:" + c.Request.Method + ":" + c.FullPath() + ":" + key
		ok, err := cfg.Store.SetNX(c.Request.Context(), storeKey, []byte(time.Now().UTC().Format(time.RFC3339)), cfg.TTL)
		if err != nil {
			c.Next()
			return
		}
		if !ok {
			response.Error(c, apperrors.Conflict("Duplicate request").WithContext("key", key), "")
			return
		}
		c.Next()
		// 失败的请求允许用同一个键重试
		if c.Writer.Status() >= http.StatusBadRequest {
			_ = cfg.Store.Delete(c.Request.Context(), storeKey)
		}
	}
}
