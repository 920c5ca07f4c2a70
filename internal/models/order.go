package models

import (
	"time"
)

// Order 订单表
type Order struct {
	ID             uint        `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`        // 订单号
	Status         string      `gorm:"type:varchar(32);index;not null" json:"status"`                // 订单状态
	Currency       string      `gorm:"type:varchar(8);not null;default:'USD'" json:"currency"`       // 币种
	ItemsTotal     Money       `gorm:"type:decimal(10,2);not null;default:0" json:"items_total"`     // 商品合计
	ShippingTotal  Money       `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_total"`  // 运费
	TaxTotal       Money       `gorm:"type:decimal(10,2);not null;default:0" json:"tax_total"`       // 税费
	TotalAmount    Money       `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`    // 应付总额（含兑换抵扣）
	RedeemCode     string      `gorm:"type:varchar(32);index" json:"redeem_code,omitempty"`          // 兑换券码（下单时快照）
	RedeemAmount   Money       `gorm:"type:decimal(10,2);not null;default:0" json:"redeem_amount"`   // 兑换抵扣金额
	RedeemDeducted bool        `gorm:"not null;default:false" json:"redeem_deducted"`                // 是否已从余额扣减
	SessionToken   string      `gorm:"type:varchar(64);index" json:"-"`                              // 下单会话标识
	CustomerEmail  string      `gorm:"type:varchar(200);index" json:"customer_email,omitempty"`      // 客户邮箱
	PaidAt         *time.Time  `gorm:"index" json:"paid_at,omitempty"`                               // 支付时间
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`                    // 订单项目
	Notes          []OrderNote `gorm:"foreignKey:OrderID" json:"notes,omitempty"`                    // 订单备注
	CreatedAt      time.Time   `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time   `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
