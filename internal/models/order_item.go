package models

import (
	"time"
)

// OrderItem 订单行（商品行或费用行，费用行金额为负表示抵扣）
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                 // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                       // 所属订单ID
	Kind        string    `gorm:"type:varchar(16);index;not null" json:"kind"`          // 行类型 product/fee
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`               // 行名称
	ProductID   uint      `gorm:"index;default:0" json:"product_id,omitempty"`          // 商品ID（费用行为 0）
	VariationID uint      `gorm:"default:0" json:"variation_id,omitempty"`              // 规格ID
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`                   // 数量
	UnitPrice   Money     `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"` // 单价
	Amount      Money     `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`  // 行小计
	GiftAmount  Money     `gorm:"type:decimal(10,2);not null;default:0" json:"gift_amount,omitempty"` // 礼品券面额（非礼品券行为 0）
	CreatedAt   time.Time `json:"created_at"`                                           // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
