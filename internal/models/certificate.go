package models

import (
	"time"
)

// CertificateBalance 礼品券余额表（每张券一行，首次兑换时惰性创建）
type CertificateBalance struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                          // 主键
	CertCode        string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"cert_code"`        // 规范券码
	SerialRaw       int64      `gorm:"index;not null;default:0" json:"serial_raw"`                    // 原始序列号
	OriginalAmount  Money      `gorm:"type:decimal(10,2);not null;default:0" json:"original_amount"`  // 原始面额（创建后不变）
	RemainingAmount Money      `gorm:"type:decimal(10,2);not null;default:0" json:"remaining_amount"` // 剩余金额
	Currency        string     `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`        // 币种
	InquiryID       *uint      `gorm:"index" json:"inquiry_id,omitempty"`                             // 外部档案记录ID（审计用）
	LastOrderID     *uint      `gorm:"index" json:"last_order_id,omitempty"`                          // 最近一次扣减的订单ID
	Status          string     `gorm:"type:varchar(16);index;not null;default:'active'" json:"status"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt       time.Time  `gorm:"index" json:"updated_at"` // 更新时间
}

// TableName 指定表名
func (CertificateBalance) TableName() string {
	return "certificate_balances"
}
