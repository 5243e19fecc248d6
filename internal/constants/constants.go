package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// OrderStatuses 全部合法订单状态（任意状态之间均可流转）
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// 优惠券类型常量
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// 店铺余额流水类型常量
const (
	CreditTxnTypeOrderUse    = "order_use"
	CreditTxnTypeAdminAdjust = "admin_adjust"
)

// 店铺余额流水方向常量
const (
	CreditTxnDirectionIn  = "in"
	CreditTxnDirectionOut = "out"
)

// 计数器名称常量
const (
	CounterInvoice = "invoice"
)

// 发票号下限
const DefaultInvoiceFloor int64 = 12000

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 队列任务类型常量
const (
	TaskOrderConfirmationEmail = "order:confirmation_email"
	TaskOrderCompletedEmail    = "order:completed_email"
	TaskOrderCancelledEmail    = "order:cancelled_email"
)

// 购物车相关常量
const (
	CartSchemaVersion        = 3
	CartWarningQuantityClamp = "quantity_clamped"
)

// 管理员角色常量
const (
	RoleOrderManager    = "order_manager"
	RoleReadonlyAuditor = "readonly_auditor"
)
