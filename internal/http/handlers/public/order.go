package public

import (
	"errors"

	"github.com/glotree/pbb-ledger/internal/http/response"
	"github.com/glotree/pbb-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// QuoteCartRequest 购物车报价请求
type QuoteCartRequest struct {
	Cart service.CartInput `json:"cart"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Cart  service.CartInput `json:"cart"`
	Email string            `json:"email"`
}

// QuoteCart 报价购物车（含当前会话的兑换抵扣行）
func (h *Handler) QuoteCart(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}
	var req QuoteCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	quote, err := h.CartService.Quote(req.Cart)
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			respondError(c, response.CodeBadRequest, "error.cart.empty", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	payload := gin.H{
		"items_total":    quote.ItemsTotal,
		"shipping_total": quote.ShippingTotal,
		"tax_total":      quote.TaxTotal,
		"grand_total":    quote.GrandTotal,
	}

	state, err := h.RedemptionService.State(c.Request.Context(), token)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if state != nil && !h.CartService.HasGiftCertificate(req.Cart.Items) {
		// 抵扣按当前余额与购物车总额重新封顶
		if balance, balErr := h.CertificateService.GetByCode(state.CertCode); balErr == nil && balance != nil {
			discount := service.CapDiscount(balance.RemainingAmount, quote.GrandTotal)
			if discount.Decimal.IsPositive() {
				capped := *state
				capped.Amount = discount
				payload["fee_line"] = service.FeeLineFor(&capped)
				payload["payable_total"] = quote.GrandTotal.Sub(discount)
			}
		}
	}

	response.Success(c, payload)
}

// CreateOrder 从购物车创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.Create(c.Request.Context(), service.CreateOrderInput{
		SessionToken:  token,
		Cart:          req.Cart,
		CustomerEmail: req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "error.cart.empty", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, order)
}

// GetOrder 按订单号查询订单
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.GetByOrderNo(c.Param("order_no"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order.not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, order)
}
