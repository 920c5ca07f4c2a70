package constants

// 订单状态
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusProcessing     = "processing"
	OrderStatusCompleted      = "completed"
	OrderStatusCanceled       = "canceled"
)

// 礼品券状态
const (
	CertificateStatusActive = "active"
	CertificateStatusVoid   = "void"
)

// 订单项类型
const (
	OrderItemKindProduct = "product"
	OrderItemKindFee     = "fee"
)

// 订单备注来源
const (
	OrderNoteSourceRedemption = "redemption"
	OrderNoteSourceSystem     = "system"
)

// 队列名称
const (
	QueueDefault = "default"
)

// 异步任务类型
const (
	TaskOrderSettle = "order:settle"
)

// 兑换会话键前缀
const (
	SessionRedeemKeyPrefix = "session:redeem"
)
