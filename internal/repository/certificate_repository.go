package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/models"

	"gorm.io/gorm"
)

// CertificateListFilter 礼品券余额列表筛选
type CertificateListFilter struct {
	Code     string
	Serial   int64
	Status   string
	Page     int
	PageSize int
}

// CertificateRepository 礼品券余额仓储接口
type CertificateRepository interface {
	GetByID(id uint) (*models.CertificateBalance, error)
	GetByCode(code string) (*models.CertificateBalance, error)
	GetBySerial(serial int64) (*models.CertificateBalance, error)
	Create(balance *models.CertificateBalance) error
	Deduct(id uint, amount models.Money, orderID uint) (*models.CertificateBalance, error)
	SetRemaining(id uint, remaining models.Money) (*models.CertificateBalance, error)
	List(filter CertificateListFilter) ([]models.CertificateBalance, int64, error)
	WithTx(tx *gorm.DB) *GormCertificateRepository
}

// GormCertificateRepository GORM 礼品券余额仓储实现
type GormCertificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository 创建礼品券余额仓储
func NewCertificateRepository(db *gorm.DB) *GormCertificateRepository {
	return &GormCertificateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCertificateRepository) WithTx(tx *gorm.DB) *GormCertificateRepository {
	if tx == nil {
		return r
	}
	return &GormCertificateRepository{db: tx}
}

// GetByID 根据 ID 查询余额记录
func (r *GormCertificateRepository) GetByID(id uint) (*models.CertificateBalance, error) {
	if id == 0 {
		return nil, nil
	}
	var balance models.CertificateBalance
	if err := r.db.First(&balance, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// GetByCode 根据规范券码查询余额记录
func (r *GormCertificateRepository) GetByCode(code string) (*models.CertificateBalance, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return nil, nil
	}
	var balance models.CertificateBalance
	if err := r.db.Where("cert_code = ?", code).First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// GetBySerial 根据序列号查询余额记录
func (r *GormCertificateRepository) GetBySerial(serial int64) (*models.CertificateBalance, error) {
	if serial <= 0 {
		return nil, nil
	}
	var balance models.CertificateBalance
	if err := r.db.Where("serial_raw = ?", serial).Order("id asc").First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &balance, nil
}

// Create 创建余额记录
func (r *GormCertificateRepository) Create(balance *models.CertificateBalance) error {
	if balance == nil {
		return errors.New("invalid certificate balance")
	}
	return r.db.Create(balance).Error
}

// Deduct 按金额扣减余额，余额不足时扣到 0 为止。
// 使用单条条件 UPDATE 保证并发扣减不会把余额扣成负数；
// 返回扣减后的最新记录，没有可扣余额时返回 nil。
func (r *GormCertificateRepository) Deduct(id uint, amount models.Money, orderID uint) (*models.CertificateBalance, error) {
	if id == 0 || !amount.Decimal.IsPositive() {
		return nil, nil
	}
	updates := map[string]interface{}{
		"remaining_amount": gorm.Expr(
			"CASE WHEN remaining_amount - ? < 0 THEN 0 ELSE remaining_amount - ? END",
			amount, amount,
		),
		"updated_at": time.Now(),
	}
	if orderID > 0 {
		updates["last_order_id"] = orderID
	}
	result := r.db.Model(&models.CertificateBalance{}).
		Where("id = ? AND status = ? AND remaining_amount > 0", id, constants.CertificateStatusActive).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

// SetRemaining 直接设置剩余金额（负数会被归零），返回最新记录。
func (r *GormCertificateRepository) SetRemaining(id uint, remaining models.Money) (*models.CertificateBalance, error) {
	if id == 0 {
		return nil, nil
	}
	if remaining.Decimal.IsNegative() {
		remaining = models.Money{}
	}
	result := r.db.Model(&models.CertificateBalance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"remaining_amount": remaining,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

// List 查询余额列表
func (r *GormCertificateRepository) List(filter CertificateListFilter) ([]models.CertificateBalance, int64, error) {
	query := r.db.Model(&models.CertificateBalance{})
	if code := strings.TrimSpace(strings.ToUpper(filter.Code)); code != "" {
		query = query.Where("cert_code LIKE ?", "%"+code+"%")
	}
	if filter.Serial > 0 {
		query = query.Where("serial_raw = ?", filter.Serial)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var balances []models.CertificateBalance
	if err := query.Order("id desc").Find(&balances).Error; err != nil {
		return nil, 0, err
	}
	return balances, total, nil
}
