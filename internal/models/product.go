package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（烘焙单品）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                        // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`            // 商品标识
	Name        string         `gorm:"not null" json:"name"`                        // 名称
	Description string         `gorm:"type:text" json:"description"`                // 描述
	Category    string         `gorm:"index" json:"category"`                       // 分类
	Price       Money          `gorm:"type:decimal(20,2);not null" json:"price"`    // 单价
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`          // 图片地址
	Stock       int            `gorm:"not null;default:0" json:"stock"`             // 库存
	Status      string         `gorm:"index;default:'active'" json:"status"`        // 状态
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
