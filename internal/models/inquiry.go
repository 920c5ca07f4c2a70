package models

import (
	"time"
)

// InquiryRecord 外部档案记录（礼品券购买留言的只读归档，面额的事实来源）
// 字段包（Fields）与旧版序列化元数据（Meta）的键名约定随版本漂移，
// 解析由 service.ArchiveService 负责，本表只负责存取。
type InquiryRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`                      // 主键
	Subject   string    `gorm:"type:varchar(200)" json:"subject"`          // 留言主题
	FromName  string    `gorm:"type:varchar(120)" json:"from_name"`        // 购买人姓名
	FromEmail string    `gorm:"type:varchar(200);index" json:"from_email"` // 购买人邮箱
	Body      string    `gorm:"type:text" json:"body"`                     // 留言正文
	Fields    JSON      `gorm:"type:json" json:"fields"`                   // 表单字段包
	Meta      string    `gorm:"type:text" json:"meta,omitempty"`           // 旧版序列化元数据
	CreatedAt time.Time `gorm:"index" json:"created_at"`                   // 创建时间
}

// TableName 指定表名
func (InquiryRecord) TableName() string {
	return "inquiry_records"
}
