package repository

import (
	"errors"
	"strings"

	"github.com/glotree/pbb-ledger/internal/models"

	"gorm.io/gorm"
)

// ManualTransactionRepository 人工交易仓储接口
type ManualTransactionRepository interface {
	Create(txn *models.ManualTransaction) error
	GetByID(id uint) (*models.ManualTransaction, error)
	ListByCode(code string) ([]models.ManualTransaction, error)
	ListBySerial(serial int64) ([]models.ManualTransaction, error)
	WithTx(tx *gorm.DB) *GormManualTransactionRepository
}

// GormManualTransactionRepository GORM 人工交易仓储实现
type GormManualTransactionRepository struct {
	db *gorm.DB
}

// NewManualTransactionRepository 创建人工交易仓储
func NewManualTransactionRepository(db *gorm.DB) *GormManualTransactionRepository {
	return &GormManualTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormManualTransactionRepository) WithTx(tx *gorm.DB) *GormManualTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormManualTransactionRepository{db: tx}
}

// Create 写入人工交易记录
func (r *GormManualTransactionRepository) Create(txn *models.ManualTransaction) error {
	if txn == nil {
		return errors.New("invalid manual transaction")
	}
	return r.db.Create(txn).Error
}

// GetByID 根据 ID 查询人工交易
func (r *GormManualTransactionRepository) GetByID(id uint) (*models.ManualTransaction, error) {
	if id == 0 {
		return nil, nil
	}
	var txn models.ManualTransaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListByCode 按规范券码查询人工交易，新的在前
func (r *GormManualTransactionRepository) ListByCode(code string) ([]models.ManualTransaction, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return []models.ManualTransaction{}, nil
	}
	var txns []models.ManualTransaction
	if err := r.db.Where("cert_code = ?", code).
		Order("created_at desc, id desc").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// ListBySerial 按序列号查询人工交易，新的在前
func (r *GormManualTransactionRepository) ListBySerial(serial int64) ([]models.ManualTransaction, error) {
	if serial <= 0 {
		return []models.ManualTransaction{}, nil
	}
	var txns []models.ManualTransaction
	if err := r.db.Where("serial_raw = ?", serial).
		Order("created_at desc, id desc").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
