package service

import (
	"strconv"
	"strings"
)

// Session 显式会话标识。购物车与结账草稿都以它为键，
// 登录用户用用户ID，游客用客户端携带的会话键。
type Session struct {
	UserID   uint
	GuestKey string
}

// UserSession 构建登录用户会话
func UserSession(userID uint) Session {
	return Session{UserID: userID}
}

// GuestSession 构建游客会话
func GuestSession(guestKey string) Session {
	return Session{GuestKey: strings.TrimSpace(guestKey)}
}

// Valid 判断会话是否有效
func (s Session) Valid() bool {
	return s.UserID > 0 || strings.TrimSpace(s.GuestKey) != ""
}

// Key 返回存储键
func (s Session) Key() string {
	if s.UserID > 0 {
		return "user:" + strconv.FormatUint(uint64(s.UserID), 10)
	}
	return "guest:" + strings.TrimSpace(s.GuestKey)
}
