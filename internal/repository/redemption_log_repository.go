package repository

import (
	"errors"
	"strings"

	"github.com/glotree/pbb-ledger/internal/models"

	"gorm.io/gorm"
)

// RedemptionLogRepository 兑换流水仓储接口
type RedemptionLogRepository interface {
	Create(log *models.RedemptionLog) error
	ListByCode(code string) ([]models.RedemptionLog, error)
	ListBySerial(serial int64) ([]models.RedemptionLog, error)
	WithTx(tx *gorm.DB) *GormRedemptionLogRepository
}

// GormRedemptionLogRepository GORM 兑换流水仓储实现
type GormRedemptionLogRepository struct {
	db *gorm.DB
}

// NewRedemptionLogRepository 创建兑换流水仓储
func NewRedemptionLogRepository(db *gorm.DB) *GormRedemptionLogRepository {
	return &GormRedemptionLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRedemptionLogRepository) WithTx(tx *gorm.DB) *GormRedemptionLogRepository {
	if tx == nil {
		return r
	}
	return &GormRedemptionLogRepository{db: tx}
}

// Create 写入兑换流水
func (r *GormRedemptionLogRepository) Create(log *models.RedemptionLog) error {
	if log == nil || log.OrderID == 0 {
		return errors.New("invalid redemption log")
	}
	return r.db.Create(log).Error
}

// ListByCode 按规范券码查询兑换流水，新的在前
func (r *GormRedemptionLogRepository) ListByCode(code string) ([]models.RedemptionLog, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return []models.RedemptionLog{}, nil
	}
	var logs []models.RedemptionLog
	if err := r.db.Where("cert_code = ?", code).
		Order("created_at desc, id desc").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// ListBySerial 按序列号查询兑换流水，新的在前
func (r *GormRedemptionLogRepository) ListBySerial(serial int64) ([]models.RedemptionLog, error) {
	if serial <= 0 {
		return []models.RedemptionLog{}, nil
	}
	var logs []models.RedemptionLog
	if err := r.db.Where("serial_raw = ?", serial).
		Order("created_at desc, id desc").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
