package public

import (
	"errors"

	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/http/response"
	"github.com/glotree/pbb-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentWebhookRequest 支付网关回调请求
type PaymentWebhookRequest struct {
	OrderNo string `json:"order_no" binding:"required"`
	Status  string `json:"status"`
}

// PaymentWebhook 支付到账回调。
// 网关可能对同一单重复通知，结算侧保证重复调用无副作用。
func (h *Handler) PaymentWebhook(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	status := req.Status
	if status == "" {
		status = constants.OrderStatusProcessing
	}

	order, err := h.OrderService.MarkPaid(c.Request.Context(), req.OrderNo, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order.not_found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.order.status_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
	})
}
