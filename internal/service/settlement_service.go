package service

import (
	"context"
	"fmt"
	"time"

	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/repository"
	"github.com/glotree/pbb-ledger/internal/session"

	"gorm.io/gorm"
)

// SettlementService 兑换结算服务。
// 订单支付到账后把快照的抵扣金额真正从余额里扣掉，
// 扣减标记的原子认领保证同一订单只扣一次。
type SettlementService struct {
	orderRepo repository.OrderRepository
	certRepo  repository.CertificateRepository
	logRepo   repository.RedemptionLogRepository
	sessions  session.Store
}

// NewSettlementService 创建兑换结算服务
func NewSettlementService(
	orderRepo repository.OrderRepository,
	certRepo repository.CertificateRepository,
	logRepo repository.RedemptionLogRepository,
	sessions session.Store,
) *SettlementService {
	return &SettlementService{
		orderRepo: orderRepo,
		certRepo:  certRepo,
		logRepo:   logRepo,
		sessions:  sessions,
	}
}

// HandleOrderPaid 结算订单的兑换扣减。可重复调用，重复结算是无害的空操作。
func (s *SettlementService) HandleOrderPaid(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.RedeemCode == "" || !order.RedeemAmount.Decimal.IsPositive() {
		return nil
	}
	if order.Status != constants.OrderStatusProcessing && order.Status != constants.OrderStatusCompleted {
		return ErrOrderStatusInvalid
	}
	if order.RedeemDeducted {
		logger.Debugw("redeem_already_settled", "order_no", order.OrderNo)
		return nil
	}

	var settled bool
	var deducted models.Money
	var remaining models.Money
	txErr := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		claimed, err := orderRepo.ClaimRedeemDeducted(order.ID)
		if err != nil {
			return err
		}
		if !claimed {
			// 并发结算时另一方已经扣过
			return nil
		}

		certRepo := s.certRepo.WithTx(tx)
		balance, err := certRepo.GetByCode(order.RedeemCode)
		if err != nil {
			return err
		}
		if balance == nil {
			return ErrCertificateNotFound
		}
		before := balance.RemainingAmount.Decimal.Round(2)
		updated, err := certRepo.Deduct(balance.ID, order.RedeemAmount, order.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrCertificateNoBalance
		}

		deducted = models.NewMoneyFromDecimal(before.Sub(updated.RemainingAmount.Decimal).Round(2))
		remaining = updated.RemainingAmount

		now := time.Now()
		if err := s.logRepo.WithTx(tx).Create(&models.RedemptionLog{
			CertCode:  updated.CertCode,
			SerialRaw: updated.SerialRaw,
			OrderID:   order.ID,
			Amount:    deducted,
			Remaining: remaining,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := orderRepo.AddNote(&models.OrderNote{
			OrderID: order.ID,
			Source:  constants.OrderNoteSourceRedemption,
			Content: fmt.Sprintf(
				"Gift certificate %s redeemed: %s deducted, %s remaining.",
				updated.CertCode, deducted.String(), remaining.String(),
			),
			CreatedAt: now,
		}); err != nil {
			return err
		}
		settled = true
		return nil
	})
	if txErr != nil {
		// 事务回滚后扣减标记仍是 false，下次结算可以重试
		if noteErr := s.orderRepo.AddNote(&models.OrderNote{
			OrderID: order.ID,
			Source:  constants.OrderNoteSourceRedemption,
			Content: fmt.Sprintf(
				"Gift certificate %s redemption failed: %v",
				order.RedeemCode, txErr,
			),
			CreatedAt: time.Now(),
		}); noteErr != nil {
			logger.Warnw("redeem_failure_note_failed", "order_no", order.OrderNo, "error", noteErr)
		}
		logger.Errorw("redeem_settlement_failed",
			"order_no", order.OrderNo,
			"cert_code", order.RedeemCode,
			"error", txErr,
		)
		return txErr
	}
	if !settled {
		return nil
	}

	if order.SessionToken != "" {
		if err := s.sessions.Unset(ctx, order.SessionToken); err != nil {
			logger.Warnw("redeem_session_clear_failed", "order_no", order.OrderNo, "error", err)
		}
	}
	logger.Infow("redeem_settled",
		"order_no", order.OrderNo,
		"cert_code", order.RedeemCode,
		"deducted", deducted.String(),
		"remaining", remaining.String(),
	)
	return nil
}
