package service

import (
	"context"
	"fmt"
	"time"

	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/session"

	"github.com/shopspring/decimal"
)

// FeeLine 结账界面上的抵扣行（金额为负）
type FeeLine struct {
	Name   string       `json:"name"`
	Amount models.Money `json:"amount"`
}

// RedemptionService 兑换会话服务。
// 负责把兑换意向写进会话，真正的扣减在订单支付结算时发生。
type RedemptionService struct {
	certSvc  *CertificateService
	cartSvc  *CartService
	sessions session.Store
}

// NewRedemptionService 创建兑换会话服务
func NewRedemptionService(certSvc *CertificateService, cartSvc *CartService, sessions session.Store) *RedemptionService {
	return &RedemptionService{certSvc: certSvc, cartSvc: cartSvc, sessions: sessions}
}

// Apply 将券码应用到当前会话。
// 抵扣金额按 min(剩余余额, 购物车总额) 封顶，购物车含礼品券商品时拒绝。
func (s *RedemptionService) Apply(ctx context.Context, token, entered string, cart CartInput) (*session.RedeemState, *CertificateResolution, error) {
	if s.cartSvc.HasGiftCertificate(cart.Items) {
		return nil, nil, ErrGiftCertificateInCart
	}
	quote, err := s.cartSvc.Quote(cart)
	if err != nil {
		return nil, nil, err
	}

	resolution, err := s.certSvc.ResolveOrCreate(entered)
	if err != nil {
		return nil, resolution, err
	}
	balance := resolution.Balance
	if !balance.RemainingAmount.Decimal.IsPositive() {
		return nil, resolution, ErrCertificateNoBalance
	}

	discount := CapDiscount(balance.RemainingAmount, quote.GrandTotal)
	state := &session.RedeemState{
		CertCode:  balance.CertCode,
		SerialRaw: balance.SerialRaw,
		Amount:    discount,
		AppliedAt: time.Now(),
	}
	if err := s.sessions.Set(ctx, token, state); err != nil {
		return nil, resolution, err
	}
	logger.Infow("redeem_applied",
		"cert_code", balance.CertCode,
		"amount", discount.String(),
		"cart_total", quote.GrandTotal.String(),
	)
	return state, resolution, nil
}

// Remove 清除会话里的兑换意向
func (s *RedemptionService) Remove(ctx context.Context, token string) error {
	return s.sessions.Unset(ctx, token)
}

// State 读取会话里的兑换意向
func (s *RedemptionService) State(ctx context.Context, token string) (*session.RedeemState, error) {
	return s.sessions.Get(ctx, token)
}

// FeeLineFor 生成结账界面上的抵扣行
func FeeLineFor(state *session.RedeemState) *FeeLine {
	if state == nil || !state.Amount.Decimal.IsPositive() {
		return nil
	}
	return &FeeLine{
		Name:   FeeLabel(state.CertCode),
		Amount: state.Amount.Neg(),
	}
}

// FeeLabel 抵扣行名称。历史订单回溯依赖这个格式，改动前先看 LedgerService。
func FeeLabel(code string) string {
	return fmt.Sprintf("Gift Certificate (%s)", code)
}

// CapDiscount 按购物车总额封顶抵扣金额
func CapDiscount(remaining, cartTotal models.Money) models.Money {
	discount := remaining.Decimal.Round(2)
	if discount.GreaterThan(cartTotal.Decimal) {
		discount = cartTotal.Decimal.Round(2)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount)
}
