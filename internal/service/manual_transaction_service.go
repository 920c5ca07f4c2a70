package service

import (
	"strings"
	"time"

	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ManualItemInput 人工交易项目输入
type ManualItemInput struct {
	Name  string       `json:"name"`
	Price models.Money `json:"price"`
}

// ManualTransactionService 人工交易服务（店员代客扣减，如到店消费）
type ManualTransactionService struct {
	manualRepo repository.ManualTransactionRepository
	certRepo   repository.CertificateRepository
	orderRepo  repository.OrderRepository
	certSvc    *CertificateService
}

// NewManualTransactionService 创建人工交易服务
func NewManualTransactionService(
	manualRepo repository.ManualTransactionRepository,
	certRepo repository.CertificateRepository,
	orderRepo repository.OrderRepository,
	certSvc *CertificateService,
) *ManualTransactionService {
	return &ManualTransactionService{
		manualRepo: manualRepo,
		certRepo:   certRepo,
		orderRepo:  orderRepo,
		certSvc:    certSvc,
	}
}

// Record 记录一笔人工交易并扣减余额。
// 写流水与扣余额在同一事务里，失败则都不发生。
func (s *ManualTransactionService) Record(entered string, items []ManualItemInput) (*models.ManualTransaction, *models.CertificateBalance, error) {
	cleaned, total := cleanManualItems(items)
	if len(cleaned) == 0 || !total.IsPositive() {
		return nil, nil, ErrManualItemsInvalid
	}

	resolution, err := s.certSvc.ResolveOrCreate(entered)
	if err != nil {
		return nil, nil, err
	}
	balance := resolution.Balance
	if !balance.RemainingAmount.Decimal.IsPositive() {
		return nil, balance, ErrCertificateNoBalance
	}

	var txnResult *models.ManualTransaction
	var updatedBalance *models.CertificateBalance
	txErr := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		txn := &models.ManualTransaction{
			CertCode:   balance.CertCode,
			SerialRaw:  balance.SerialRaw,
			Items:      cleaned,
			ItemsTotal: models.NewMoneyFromDecimal(total),
			CreatedAt:  now,
		}
		if err := s.manualRepo.WithTx(tx).Create(txn); err != nil {
			return err
		}
		updated, err := s.certRepo.WithTx(tx).Deduct(balance.ID, models.NewMoneyFromDecimal(total), 0)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrCertificateNoBalance
		}
		txnResult = txn
		updatedBalance = updated
		return nil
	})
	if txErr != nil {
		if txErr == ErrCertificateNoBalance {
			return nil, balance, txErr
		}
		logger.Errorw("manual_transaction_failed",
			"cert_code", balance.CertCode,
			"total", total.String(),
			"error", txErr,
		)
		return nil, balance, ErrManualTransactionFailed
	}

	logger.Infow("manual_transaction_recorded",
		"cert_code", balance.CertCode,
		"total", total.String(),
		"remaining", updatedBalance.RemainingAmount.String(),
	)
	return txnResult, updatedBalance, nil
}

// History 查询某张券的人工交易历史
func (s *ManualTransactionService) History(entered string) ([]models.ManualTransaction, error) {
	serial := s.certSvc.Codec().ToSerial(entered)
	if serial <= 0 {
		return nil, ErrCertificateCodeInvalid
	}
	return s.manualRepo.ListBySerial(serial)
}

// cleanManualItems 过滤空行并汇总金额，名称为空或金额非正的行直接丢弃
func cleanManualItems(items []ManualItemInput) (models.ManualItemList, decimal.Decimal) {
	cleaned := make(models.ManualItemList, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		price := item.Price.Decimal.Round(2)
		if name == "" || !price.IsPositive() {
			continue
		}
		cleaned = append(cleaned, models.ManualItem{
			Name:  name,
			Price: models.NewMoneyFromDecimal(price),
		})
		total = total.Add(price)
	}
	return cleaned, total.Round(2)
}
