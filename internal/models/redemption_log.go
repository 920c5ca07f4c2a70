package models

import (
	"time"
)

// RedemptionLog 兑换扣减流水（结算成功后写入，按序列号聚合审计）
type RedemptionLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`                             // 主键
	CertCode  string    `gorm:"type:varchar(32);index;not null" json:"cert_code"` // 规范券码
	SerialRaw int64     `gorm:"index;not null;default:0" json:"serial_raw"`       // 原始序列号
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                   // 订单ID
	Amount    Money     `gorm:"type:decimal(10,2);not null" json:"amount"`        // 扣减金额
	Remaining Money     `gorm:"type:decimal(10,2);not null" json:"remaining"`     // 扣减后余额
	CreatedAt time.Time `gorm:"index" json:"created_at"`                          // 创建时间
}

// TableName 指定表名
func (RedemptionLog) TableName() string {
	return "redemption_logs"
}
