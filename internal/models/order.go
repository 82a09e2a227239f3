package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号（ORD 前缀）
	UserID              uint           `gorm:"index;not null" json:"user_id"`                             // 用户ID
	CustomerName        string         `gorm:"not null" json:"customer_name"`                             // 收件人姓名
	CustomerEmail       string         `gorm:"index;not null" json:"customer_email"`                      // 收件人邮箱
	CustomerPhone       string         `gorm:"type:varchar(32)" json:"customer_phone"`                    // 收件人电话
	ShippingAddress     string         `gorm:"type:text" json:"shipping_address"`                         // 收货地址
	Status              string         `gorm:"index;not null" json:"status"`                              // 订单状态
	PaymentMethod       string         `gorm:"type:varchar(20);not null" json:"payment_method"`           // 支付方式
	Currency            string         `gorm:"not null" json:"currency"`                                  // 币种
	ItemsSubtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"items_subtotal"` // 商品小计
	ShippingFee         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`   // 运费
	DiscountAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`   // 实付金额
	PromoCode           string         `gorm:"type:varchar(64)" json:"promo_code,omitempty"`              // 使用的优惠码
	CaptureID           string         `gorm:"type:varchar(100);index" json:"capture_id,omitempty"`       // 支付捕获ID
	PayerReference      string         `gorm:"type:varchar(100)" json:"payer_reference,omitempty"`        // 支付方参考号
	EstimatedDeliveryAt time.Time      `json:"estimated_delivery_at"`                                     // 预计送达时间
	PaidAt              *time.Time     `gorm:"index" json:"paid_at"`                                      // 支付时间
	CompletedAt         *time.Time     `gorm:"index" json:"completed_at"`                                 // 完成时间
	CancelledAt         *time.Time     `gorm:"index" json:"cancelled_at"`                                 // 取消时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
