// Package session 维护登录会话：角色解析、离线降级后的身份，以及跨重启的会话持久化
package session

import (
	"time"

	"edu_portal_backend/internal/model"
)

// KeyPrefix 持久化会话的键名，按用户 ID 区分
const KeyPrefix = "currentUser"

// Session 当前登录用户
type Session struct {
	UserID    string         `json:"userId"`
	Email     string         `json:"email"`
	Role      model.UserRole `json:"role"`
	Profile   *model.Profile `json:"profile"`
	Offline   bool           `json:"offline"`
	CreatedAt time.Time      `json:"createdAt"`
}

func Key(userID string) string {
	return KeyPrefix + ":" + userID
}
