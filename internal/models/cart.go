package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart 购物车头表（每个会话键一行，承载优惠码状态）
type Cart struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                             // 主键
	SessionKey      string         `gorm:"uniqueIndex;not null" json:"session_key"`                          // 会话键（用户或游客）
	PromoCode       string         `gorm:"type:varchar(64)" json:"promo_code"`                               // 已应用的优惠码
	DiscountPercent float64        `gorm:"not null;default:0" json:"discount_percent"`                       // 折扣百分比
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                          // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                          // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                   // 软删除时间

	Items []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}
