package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（结账时按邮箱懒注册，密码哈希可为空）
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // 邮箱
	PasswordHash string         `gorm:"default:''" json:"-"`               // 密码哈希（懒注册用户为空）
	Name         string         `gorm:"default:''" json:"name"`            // 姓名（默认为邮箱前缀）
	Phone        string         `gorm:"type:varchar(32)" json:"phone"`     // 联系电话
	OrderCount   int            `gorm:"not null;default:0" json:"order_count"`
	LastLoginAt  *time.Time     `json:"last_login_at"`           // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
