package listeners

import (
	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/util"

	"go.uber.org/zap"
)

// InitUserListeners 新用户注册时记录日志
func InitUserListeners(sig *util.Signals) {
	sig.Connect(models.SigUserCreate, func(sender any, params ...any) {
		user, ok := sender.(*models.User)
		if !ok {
			return
		}
		logger.Info("user created",
			zap.Uint("id", user.ID),
			zap.String("username", user.Username),
			zap.String("lang", user.PreferredLanguage))
	})
}
