package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// 支付方式常量
const (
	PaymentMethodPaypal         = "paypal"
	PaymentMethodCashOnDelivery = "cod"
)

// 商品状态常量
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// 通知事件常量
const (
	NotifyEventOrderPlaced    = "order_placed"
	NotifyEventOrderCompleted = "order_completed"
)

// 通知渠道常量
const (
	NotifyChannelOwnerEmail    = "owner_email"
	NotifyChannelOwnerSMS      = "owner_sms"
	NotifyChannelCustomerEmail = "customer_email"
	NotifyChannelCustomerSMS   = "customer_sms"
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskOrderNotify          = "notify:order"
	TaskOrderCompletedNotify = "notify:order_completed"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "kc"
)

// 币种常量
const (
	SiteCurrencyDefault = "PHP"
)

// 订单号前缀常量
const (
	OrderNoPrefix = "ORD"
)
