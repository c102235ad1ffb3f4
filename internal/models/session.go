package models

import (
	"strconv"
	"time"
)

const (
	SigSessionAction = "session.action"
	SigSessionEnd    = "session.end"
)

// Action 会话中的一次用户操作，仅用于审计与历史
type Action struct {
	Type      string    `json:"type" binding:"required,max=64"`
	Timestamp time.Time `json:"timestamp"`
	Data      JSON      `json:"data,omitempty"`
}

type UserSession struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        *uint      `gorm:"index" json:"userId"`
	SessionData   JSON       `json:"sessionData"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `gorm:"index" json:"endTime"`
	EmergencyType *string    `gorm:"size:64" json:"emergencyType"`
	Actions       []Action   `gorm:"serializer:json;type:text" json:"actions"`
}

type SessionInsert struct {
	UserID        *uint      `json:"userId"`
	SessionData   JSON       `json:"sessionData"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	EmergencyType *string    `json:"emergencyType" binding:"omitempty,max=64"`
	Actions       []Action   `json:"actions" binding:"omitempty,dive"`
}

// SessionPatch Actions 非 nil 时整体替换
type SessionPatch struct {
	UserID        *uint      `json:"userId"`
	SessionData   JSON       `json:"sessionData"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	EmergencyType *string    `json:"emergencyType" binding:"omitempty,max=64"`
	Actions       []Action   `json:"actions" binding:"omitempty,dive"`
}

// ActionInsert 追加单个操作的请求体
type ActionInsert struct {
	Type      string     `json:"type" binding:"required,max=64"`
	Timestamp *time.Time `json:"timestamp"`
	Data      JSON       `json:"data"`
}

// NewSession startTime 缺省为当前时间
func (in SessionInsert) NewSession(now time.Time) UserSession {
	s := UserSession{
		UserID:        clonePtr(in.UserID),
		SessionData:   in.SessionData.Clone(),
		StartTime:     now,
		EndTime:       clonePtr(in.EndTime),
		EmergencyType: clonePtr(in.EmergencyType),
		Actions:       cloneActions(in.Actions),
	}
	if in.StartTime != nil {
		s.StartTime = *in.StartTime
	}
	if s.Actions == nil {
		s.Actions = []Action{}
	}
	return s
}

func (p SessionPatch) Apply(s *UserSession) {
	if p.UserID != nil {
		s.UserID = clonePtr(p.UserID)
	}
	if p.SessionData.Present() {
		s.SessionData = p.SessionData.Clone()
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = clonePtr(p.EndTime)
	}
	if p.EmergencyType != nil {
		s.EmergencyType = clonePtr(p.EmergencyType)
	}
	if p.Actions != nil {
		s.Actions = cloneActions(p.Actions)
	}
}

func (in ActionInsert) NewAction(now time.Time) Action {
	a := Action{Type: in.Type, Timestamp: now, Data: in.Data.Clone()}
	if in.Timestamp != nil {
		a.Timestamp = *in.Timestamp
	}
	return a
}

// SessionTopic 会话事件推送的主题名
func SessionTopic(id uint) string { return "session:" + strconv.FormatUint(uint64(id), 10) }

// Active 尚未结束的会话
func (s UserSession) Active() bool { return s.EndTime == nil }

func (s UserSession) Clone() UserSession {
	s.UserID = clonePtr(s.UserID)
	s.SessionData = s.SessionData.Clone()
	s.EndTime = clonePtr(s.EndTime)
	s.EmergencyType = clonePtr(s.EmergencyType)
	s.Actions = cloneActions(s.Actions)
	if s.Actions == nil {
		s.Actions = []Action{}
	}
	return s
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneActions(in []Action) []Action {
	if in == nil {
		return nil
	}
	out := make([]Action, len(in))
	for i, a := range in {
		a.Data = a.Data.Clone()
		out[i] = a
	}
	return out
}
