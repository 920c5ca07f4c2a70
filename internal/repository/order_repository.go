package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/models"

	"gorm.io/gorm"
)

// OrderListFilter 订单列表筛选
type OrderListFilter struct {
	OrderNo  string
	Status   string
	Email    string
	Page     int
	PageSize int
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	UpdateStatus(id uint, status string) error
	MarkPaid(id uint, status string, paidAt time.Time) error
	ClaimRedeemDeducted(id uint) (bool, error)
	AddNote(note *models.OrderNote) error
	List(filter OrderListFilter) ([]models.Order, int64, error)
	ListByRedeemCode(code string) ([]models.Order, error)
	ListByFeeLabel(label string) ([]models.Order, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormOrderRepository GORM 订单仓储实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建订单（含订单行）
func (r *GormOrderRepository) Create(order *models.Order) error {
	if order == nil {
		return errors.New("invalid order")
	}
	return r.db.Create(order).Error
}

// GetByID 根据 ID 查询订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Preload("Notes").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号查询订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Preload("Items").Preload("Notes").
		Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatus 更新订单状态
func (r *GormOrderRepository) UpdateStatus(id uint, status string) error {
	if id == 0 {
		return errors.New("invalid order id")
	}
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     strings.TrimSpace(status),
			"updated_at": time.Now(),
		}).Error
}

// MarkPaid 标记订单已支付
func (r *GormOrderRepository) MarkPaid(id uint, status string, paidAt time.Time) error {
	if id == 0 {
		return errors.New("invalid order id")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     strings.TrimSpace(status),
			"paid_at":    paidAt,
			"updated_at": time.Now(),
		}).Error
}

// ClaimRedeemDeducted 原子认领扣减标记。
// 只有第一次调用会把标记从 false 翻成 true 并返回 true，
// 重复结算时返回 false，调用方据此跳过扣减。
func (r *GormOrderRepository) ClaimRedeemDeducted(id uint) (bool, error) {
	if id == 0 {
		return false, errors.New("invalid order id")
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND redeem_deducted = ?", id, false).
		Updates(map[string]interface{}{
			"redeem_deducted": true,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AddNote 追加订单备注
func (r *GormOrderRepository) AddNote(note *models.OrderNote) error {
	if note == nil || note.OrderID == 0 {
		return errors.New("invalid order note")
	}
	return r.db.Create(note).Error
}

// List 查询订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+orderNo+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if email := strings.TrimSpace(filter.Email); email != "" {
		query = query.Where(fmt.Sprintf("customer_email %s ?", likeOperator(r.db)), "%"+email+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByRedeemCode 按兑换券码查询订单，新的在前
func (r *GormOrderRepository) ListByRedeemCode(code string) ([]models.Order, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if code == "" {
		return []models.Order{}, nil
	}
	var orders []models.Order
	if err := r.db.Preload("Items").
		Where("redeem_code = ?", code).
		Order("created_at desc, id desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByFeeLabel 按费用行名称查询订单（旧数据没有兑换快照，只能靠费用行回溯）
func (r *GormOrderRepository) ListByFeeLabel(label string) ([]models.Order, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return []models.Order{}, nil
	}
	var orders []models.Order
	err := r.db.Preload("Items").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.kind = ? AND order_items.name = ?", constants.OrderItemKindFee, label).
		Group("orders.id").
		Order("orders.created_at desc, orders.id desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
