package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glotree/pbb-ledger/internal/models"

	"gorm.io/gorm"
)

// serialFieldKeys 档案字段包里序列号键名的历史变体，按优先级排列。
var serialFieldKeys = []string{
	"serial_number",
	"_field_serial_number",
	"field_serial_number",
	"serial-number",
	"serialnumber",
}

// InquiryListFilter 档案记录列表筛选
type InquiryListFilter struct {
	Email    string
	Keyword  string
	Page     int
	PageSize int
}

// InquiryRepository 外部档案仓储接口
type InquiryRepository interface {
	GetByID(id uint) (*models.InquiryRecord, error)
	Create(record *models.InquiryRecord) error
	FindBySerialValues(values []string) (*models.InquiryRecord, error)
	ScanByLooseMatch(values []string, limit int) ([]models.InquiryRecord, error)
	List(filter InquiryListFilter) ([]models.InquiryRecord, int64, error)
	SearchedFieldKeys() []string
}

// GormInquiryRepository GORM 外部档案仓储实现
type GormInquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository 创建外部档案仓储
func NewInquiryRepository(db *gorm.DB) *GormInquiryRepository {
	return &GormInquiryRepository{db: db}
}

// GetByID 根据 ID 查询档案记录
func (r *GormInquiryRepository) GetByID(id uint) (*models.InquiryRecord, error) {
	if id == 0 {
		return nil, nil
	}
	var record models.InquiryRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create 写入档案记录（导入与种子数据使用）
func (r *GormInquiryRepository) Create(record *models.InquiryRecord) error {
	if record == nil {
		return errors.New("invalid inquiry record")
	}
	return r.db.Create(record).Error
}

// FindBySerialValues 按序列号候选值在字段包的各个历史键名下精确匹配，
// 命中多条时取最新一条。
func (r *GormInquiryRepository) FindBySerialValues(values []string) (*models.InquiryRecord, error) {
	values = trimNonEmpty(values)
	if len(values) == 0 {
		return nil, nil
	}

	parts := make([]string, 0, len(serialFieldKeys)*len(values))
	args := make([]interface{}, 0, len(serialFieldKeys)*len(values))
	for _, key := range serialFieldKeys {
		expr := jsonTextExpr(r.db, "fields", key)
		for _, value := range values {
			parts = append(parts, fmt.Sprintf("%s = ?", expr))
			args = append(args, value)
		}
	}

	var record models.InquiryRecord
	err := r.db.Where(strings.Join(parts, " OR "), args...).
		Order("created_at desc, id desc").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ScanByLooseMatch 按候选值对字段包、旧版元数据与正文做粗匹配扫描，
// 返回的记录还需要调用方在内存里二次确认序列号。
func (r *GormInquiryRepository) ScanByLooseMatch(values []string, limit int) ([]models.InquiryRecord, error) {
	values = trimNonEmpty(values)
	if len(values) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 200
	}

	operator := likeOperator(r.db)
	fieldsText := jsonCastTextExpr(r.db, "fields")
	columns := []string{fieldsText, "meta", "body"}

	parts := make([]string, 0, len(columns)*len(values))
	args := make([]interface{}, 0, len(columns)*len(values))
	for _, column := range columns {
		for _, value := range values {
			parts = append(parts, fmt.Sprintf("%s %s ?", column, operator))
			args = append(args, "%"+value+"%")
		}
	}

	var records []models.InquiryRecord
	err := r.db.Where(strings.Join(parts, " OR "), args...).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// List 查询档案记录列表
func (r *GormInquiryRepository) List(filter InquiryListFilter) ([]models.InquiryRecord, int64, error) {
	query := r.db.Model(&models.InquiryRecord{})
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where(fmt.Sprintf("from_email %s ?", likeOperator(r.db)), "%"+email+"%")
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		operator := likeOperator(r.db)
		cond := fmt.Sprintf("subject %s ? OR from_name %s ? OR body %s ?", operator, operator, operator)
		query = query.Where(cond, repeatArgs("%"+keyword+"%", 3)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.InquiryRecord
	if err := query.Order("created_at desc, id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// SearchedFieldKeys 返回序列号匹配时检查过的字段键名（诊断用）
func (r *GormInquiryRepository) SearchedFieldKeys() []string {
	keys := make([]string, len(serialFieldKeys))
	copy(keys, serialFieldKeys)
	return keys
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
