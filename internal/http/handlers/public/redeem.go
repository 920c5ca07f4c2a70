package public

import (
	"errors"

	"github.com/glotree/pbb-ledger/internal/http/response"
	"github.com/glotree/pbb-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ApplyRedeemRequest 应用兑换请求
type ApplyRedeemRequest struct {
	Code string            `json:"code" binding:"required"`
	Cart service.CartInput `json:"cart"`
}

// BalanceRequest 余额查询请求
type BalanceRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyRedeem 将券码应用到当前结账会话
func (h *Handler) ApplyRedeem(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}
	var req ApplyRedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	state, resolution, err := h.RedemptionService.Apply(c.Request.Context(), token, req.Code, req.Cart)
	if err != nil {
		respondRedeemError(c, resolution, err)
		return
	}

	response.Success(c, gin.H{
		"cert_code": state.CertCode,
		"discount":  state.Amount,
		"fee_line":  service.FeeLineFor(state),
		"remaining": resolution.Balance.RemainingAmount,
	})
}

// RemoveRedeem 清除当前会话的兑换意向
func (h *Handler) RemoveRedeem(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}
	if err := h.RedemptionService.Remove(c.Request.Context(), token); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// RedeemState 查看当前会话的兑换意向
func (h *Handler) RedeemState(c *gin.Context) {
	token, ok := sessionToken(c)
	if !ok {
		return
	}
	state, err := h.RedemptionService.State(c.Request.Context(), token)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if state == nil {
		response.Success(c, gin.H{"applied": false})
		return
	}
	response.Success(c, gin.H{
		"applied":   true,
		"cert_code": state.CertCode,
		"discount":  state.Amount,
		"fee_line":  service.FeeLineFor(state),
	})
}

// CheckBalance 查询券的剩余余额（首次查询会触发建账）
func (h *Handler) CheckBalance(c *gin.Context) {
	var req BalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	resolution, err := h.CertificateService.ResolveOrCreate(req.Code)
	if err != nil {
		respondRedeemError(c, resolution, err)
		return
	}
	balance := resolution.Balance
	response.Success(c, gin.H{
		"cert_code": balance.CertCode,
		"original":  balance.OriginalAmount,
		"remaining": balance.RemainingAmount,
		"currency":  balance.Currency,
	})
}

// respondRedeemError 统一映射券码解析相关错误，未命中时附带检索诊断
func respondRedeemError(c *gin.Context, resolution *service.CertificateResolution, err error) {
	switch {
	case errors.Is(err, service.ErrCertificateCodeInvalid):
		respondError(c, response.CodeBadRequest, "error.certificate.invalid", nil)
	case errors.Is(err, service.ErrCertificateNotFound):
		data := gin.H{}
		if resolution != nil {
			data["candidates"] = resolution.Candidates
			data["searched_keys"] = resolution.SearchedKeys
		}
		respondErrorWithData(c, response.CodeNotFound, "error.certificate.not_found", nil, data)
	case errors.Is(err, service.ErrArchiveAmountMissing):
		respondError(c, response.CodeBadRequest, "error.certificate.amount", nil)
	case errors.Is(err, service.ErrCertificateNoBalance):
		respondError(c, response.CodeBadRequest, "error.certificate.no_balance", nil)
	case errors.Is(err, service.ErrGiftCertificateInCart):
		respondError(c, response.CodeBadRequest, "error.certificate.in_cart", nil)
	case errors.Is(err, service.ErrCartEmpty):
		respondError(c, response.CodeBadRequest, "error.cart.empty", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
