package models

import "time"

const SigUserCreate = "user.create"

type User struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Username              string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	Password              string    `gorm:"size:255;not null" json:"-"`
	PreferredLanguage     string    `gorm:"size:16" json:"preferredLanguage"`
	AccessibilitySettings JSON      `json:"accessibilitySettings"`
	CreatedAt             time.Time `json:"createdAt"`
}

// UserInsert 创建用户的请求体
type UserInsert struct {
	Username              string `json:"username" binding:"required,max=128"`
	Password              string `json:"password" binding:"required"`
	PreferredLanguage     string `json:"preferredLanguage" binding:"omitempty,max=16"`
	AccessibilitySettings JSON   `json:"accessibilitySettings"`
}

// UserPatch 只修改出现的字段
type UserPatch struct {
	Username              *string `json:"username" binding:"omitempty,min=1,max=128"`
	Password              *string `json:"password" binding:"omitempty,min=1"`
	PreferredLanguage     *string `json:"preferredLanguage" binding:"omitempty,max=16"`
	AccessibilitySettings JSON    `json:"accessibilitySettings"`
}

// NewUser 由请求体构造记录，ID 由存储层分配
func (in UserInsert) NewUser(now time.Time) User {
	lang := in.PreferredLanguage
	if lang == "" {
		lang = "en"
	}
	return User{
		Username:              in.Username,
		Password:              in.Password,
		PreferredLanguage:     lang,
		AccessibilitySettings: in.AccessibilitySettings.Clone(),
		CreatedAt:             now,
	}
}

func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.PreferredLanguage != nil {
		u.PreferredLanguage = *p.PreferredLanguage
	}
	if p.AccessibilitySettings.Present() {
		u.AccessibilitySettings = p.AccessibilitySettings.Clone()
	}
}

func (u User) Clone() User {
	u.AccessibilitySettings = u.AccessibilitySettings.Clone()
	return u
}
