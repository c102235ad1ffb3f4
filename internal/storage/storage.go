// Package storage 持久化层：内存实现与 gorm 实现共享同一接口，找不到记录时返回 (nil, nil)
package storage

import (
	"context"
	"errors"
	"time"

	"EmergencyAssist/internal/models"
	"EmergencyAssist/pkg/util"
)

var ErrDuplicateUsername = errors.New("username already exists")

type Storage interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, in models.UserInsert) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error)

	GetEmergencyProtocols(ctx context.Context) ([]models.EmergencyProtocol, error)
	GetEmergencyProtocol(ctx context.Context, protocolType string) (*models.EmergencyProtocol, error)
	CreateEmergencyProtocol(ctx context.Context, in models.ProtocolInsert) (*models.EmergencyProtocol, error)

	GetEmergencyContacts(ctx context.Context, country string) ([]models.EmergencyContact, error)
	GetEmergencyContactsByType(ctx context.Context, contactType, country string) ([]models.EmergencyContact, error)
	CreateEmergencyContact(ctx context.Context, in models.ContactInsert) (*models.EmergencyContact, error)

	CreateUserSession(ctx context.Context, in models.SessionInsert) (*models.UserSession, error)
	GetUserSession(ctx context.Context, id uint) (*models.UserSession, error)
	GetUserSessionsByUser(ctx context.Context, userID uint) ([]models.UserSession, error)
	UpdateUserSession(ctx context.Context, id uint, patch models.SessionPatch) (*models.UserSession, error)
	// AppendUserSessionAction 在服务端原子地追加一个操作
	AppendUserSessionAction(ctx context.Context, id uint, action models.Action) (*models.UserSession, error)
	// EndUserSession 结束会话，已结束的会话保持原结束时间
	EndUserSession(ctx context.Context, id uint) (*models.UserSession, error)
	CountActiveSessions(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

// endSession 只在 EndTime 为空时写入，须在持有会话锁时调用
func endSession(now func() time.Time) func(*models.UserSession) {
	return func(sess *models.UserSession) {
		if sess.EndTime == nil {
			t := now()
			sess.EndTime = &t
		}
	}
}

// emitter 两种实现共用的信号发送逻辑
type emitter struct {
	sig *util.Signals
}

func (e emitter) userCreated(u models.User) {
	e.sig.Emit(models.SigUserCreate, &u)
}

// sessionChanged 对比更新前后，为新增的操作与结束事件发送信号
func (e emitter) sessionChanged(before, after models.UserSession) {
	if len(after.Actions) > len(before.Actions) {
		for _, a := range after.Actions[len(before.Actions):] {
			e.sig.Emit(models.SigSessionAction, &after, a)
		}
	}
	if before.Active() && !after.Active() {
		e.sig.Emit(models.SigSessionEnd, &after)
	}
}
