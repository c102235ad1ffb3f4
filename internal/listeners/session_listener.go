package listeners

import (
	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/logger"
	"EmergencyAssist/pkg/metrics"
	"EmergencyAssist/pkg/sse"
	"EmergencyAssist/pkg/util"

	"go.uber.org/zap"
)

// InitSessionListeners 统计会话操作、记录会话结束，hub 不为 nil 时向订阅者推送
func InitSessionListeners(sig *util.Signals, m *metrics.Metrics, hub *sse.Hub) {
	sig.Connect(models.SigSessionAction, func(sender any, params ...any) {
		if len(params) == 0 {
			return
		}
		action, ok := params[0].(models.Action)
		if !ok {
			return
		}
		m.RecordSessionAction(action.Type)
		sess, ok := sender.(*models.UserSession)
		if !ok {
			return
		}
		logger.Debug("session action", zap.Uint("session", sess.ID), zap.String("type", action.Type))
		publish(hub, sess.ID, "action", action)
	})

	sig.Connect(models.SigSessionEnd, func(sender any, params ...any) {
		sess, ok := sender.(*models.UserSession)
		if !ok || sess.EndTime == nil {
			return
		}
		fields := []zap.Field{
			zap.Uint("session", sess.ID),
			zap.Duration("duration", sess.EndTime.Sub(sess.StartTime)),
			zap.Int("actions", len(sess.Actions)),
		}
		if sess.EmergencyType != nil {
			fields = append(fields, zap.String("emergencyType", *sess.EmergencyType))
		}
		logger.Info("session ended", fields...)
		publish(hub, sess.ID, "end", sess)
	})
}

func publish(hub *sse.Hub, id uint, event string, v any) {
	if hub == nil {
		return
	}
	if _, err := hub.Publish(models.SessionTopic(id), event, v); err != nil {
		logger.Warn("publish session event failed", zap.Uint("session", id), zap.Error(err))
	}
}
