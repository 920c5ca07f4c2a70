package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ManualItem 人工交易的单个项目
type ManualItem struct {
	Name  string `json:"name"`  // 项目名称
	Price Money  `json:"price"` // 项目金额
}

// ManualItemList 人工交易项目列表（JSON 存储）
type ManualItemList []ManualItem

// Value 用于数据库写入
func (l ManualItemList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 用于数据库读取
func (l *ManualItemList) Scan(value interface{}) error {
	if value == nil {
		*l = ManualItemList{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported manual item column type")
	}
	if len(b) == 0 {
		*l = ManualItemList{}
		return nil
	}
	return json.Unmarshal(b, l)
}

// ManualTransaction 人工交易表（店员录入的非订单消费，只追加不修改）
type ManualTransaction struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                     // 主键
	CertCode   string         `gorm:"type:varchar(32);index;not null" json:"cert_code"`         // 规范券码
	SerialRaw  int64          `gorm:"index;not null;default:0" json:"serial_raw"`               // 原始序列号
	Items      ManualItemList `gorm:"type:json;not null" json:"items"`                          // 项目明细
	ItemsTotal Money          `gorm:"type:decimal(10,2);not null;default:0" json:"items_total"` // 项目合计
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (ManualTransaction) TableName() string {
	return "manual_transactions"
}
