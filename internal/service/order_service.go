package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/queue"
	"github.com/glotree/pbb-ledger/internal/repository"
	"github.com/glotree/pbb-ledger/internal/session"

	"github.com/shopspring/decimal"
)

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	SessionToken  string
	Cart          CartInput
	CustomerEmail string
	Currency      string
}

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	certSvc       *CertificateService
	cartSvc       *CartService
	sessions      session.Store
	settlementSvc *SettlementService
	queueClient   *queue.Client
	currency      string
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	certSvc *CertificateService,
	cartSvc *CartService,
	sessions session.Store,
	settlementSvc *SettlementService,
	queueClient *queue.Client,
	currency string,
) *OrderService {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return &OrderService{
		orderRepo:     orderRepo,
		certSvc:       certSvc,
		cartSvc:       cartSvc,
		sessions:      sessions,
		settlementSvc: settlementSvc,
		queueClient:   queueClient,
		currency:      currency,
	}
}

// Create 从购物车与会话兑换意向创建订单。
// 兑换抵扣按下单时点的余额与购物车总额重新封顶后快照进订单。
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	quote, err := s.cartSvc.Quote(input.Cart)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:       generateOrderNo(),
		Status:        constants.OrderStatusPendingPayment,
		Currency:      s.currency,
		ItemsTotal:    quote.ItemsTotal,
		ShippingTotal: quote.ShippingTotal,
		TaxTotal:      quote.TaxTotal,
		TotalAmount:   quote.GrandTotal,
		SessionToken:  strings.TrimSpace(input.SessionToken),
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, item := range quote.Items {
		line := models.OrderItem{
			Kind:        constants.OrderItemKindProduct,
			Name:        item.Name,
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      models.NewMoneyFromDecimal(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			CreatedAt:   now,
		}
		// 购买礼品券的行按小计均摊记录面额，发放走线下流程
		if s.cartSvc.IsGiftCertificateItem(item) {
			line.GiftAmount = GiftAmountPerUnit(line.Amount, line.Quantity)
		}
		order.Items = append(order.Items, line)
	}

	state, err := s.sessions.Get(ctx, input.SessionToken)
	if err != nil {
		return nil, err
	}
	if state != nil && !s.cartSvc.HasGiftCertificate(input.Cart.Items) {
		balance, balErr := s.certSvc.GetByCode(state.CertCode)
		if balErr != nil {
			return nil, balErr
		}
		if balance != nil && balance.RemainingAmount.Decimal.IsPositive() {
			discount := CapDiscount(balance.RemainingAmount, quote.GrandTotal)
			if discount.Decimal.IsPositive() {
				order.RedeemCode = balance.CertCode
				order.RedeemAmount = discount
				order.TotalAmount = quote.GrandTotal.Sub(discount)
				order.Items = append(order.Items, models.OrderItem{
					Kind:      constants.OrderItemKindFee,
					Name:      FeeLabel(balance.CertCode),
					Quantity:  1,
					UnitPrice: discount.Neg(),
					Amount:    discount.Neg(),
					CreatedAt: now,
				})
			}
		}
	}

	if err := s.orderRepo.Create(order); err != nil {
		logger.Errorw("order_create_failed", "error", err)
		return nil, ErrOrderCreateFailed
	}
	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"total", order.TotalAmount.String(),
		"redeem_code", order.RedeemCode,
		"redeem_amount", order.RedeemAmount.String(),
	)
	return order, nil
}

// GetByOrderNo 按订单号查询订单
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 查询订单列表
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// MarkPaid 标记订单支付到账并触发兑换结算。
// 队列可用时结算走异步任务，否则在当前调用里同步完成。
func (s *OrderService) MarkPaid(ctx context.Context, orderNo, status string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	status = strings.TrimSpace(status)
	if status != constants.OrderStatusProcessing && status != constants.OrderStatusCompleted {
		return nil, ErrOrderStatusInvalid
	}
	// 网关对同一单重复通知同一状态时按重放处理，只重触发结算
	replay := order.Status == status
	if !replay {
		switch order.Status {
		case constants.OrderStatusPendingPayment:
		case constants.OrderStatusProcessing:
			if status != constants.OrderStatusCompleted {
				return nil, ErrOrderStatusInvalid
			}
		default:
			return nil, ErrOrderStatusInvalid
		}

		paidAt := time.Now()
		if order.PaidAt != nil {
			paidAt = *order.PaidAt
		}
		if err := s.orderRepo.MarkPaid(order.ID, status, paidAt); err != nil {
			return nil, err
		}
		logger.Infow("order_marked_paid", "order_no", order.OrderNo, "status", status)
	}

	if s.queueClient != nil && s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOrderSettle(ctx, order.ID); err != nil {
			logger.Warnw("order_settle_enqueue_failed", "order_id", order.ID, "error", err)
			if err := s.settlementSvc.HandleOrderPaid(ctx, order.ID); err != nil {
				logger.Errorw("order_settle_inline_failed", "order_id", order.ID, "error", err)
			}
		}
	} else if err := s.settlementSvc.HandleOrderPaid(ctx, order.ID); err != nil {
		logger.Errorw("order_settle_inline_failed", "order_id", order.ID, "error", err)
	}

	return s.orderRepo.GetByID(order.ID)
}

// Cancel 取消未支付订单
func (s *OrderService) Cancel(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPendingPayment {
		return nil, ErrOrderStatusInvalid
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusCanceled); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(order.ID)
}

func generateOrderNo() string {
	return fmt.Sprintf("GC%s%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
}
