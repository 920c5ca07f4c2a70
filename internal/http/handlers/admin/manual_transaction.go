package admin

import (
	"errors"

	"github.com/glotree/pbb-ledger/internal/http/response"
	"github.com/glotree/pbb-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ManualTransactionRequest 人工交易请求
type ManualTransactionRequest struct {
	Code  string                    `json:"code" binding:"required"`
	Items []service.ManualItemInput `json:"items" binding:"required"`
}

// CreateManualTransaction 录入人工交易并扣减余额
func (h *Handler) CreateManualTransaction(c *gin.Context) {
	var req ManualTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	txn, balance, err := h.ManualTransactionService.Record(req.Code, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrManualItemsInvalid):
			respondError(c, response.CodeBadRequest, "error.manual.items_invalid", nil)
		case errors.Is(err, service.ErrCertificateCodeInvalid):
			respondError(c, response.CodeBadRequest, "error.certificate.invalid", nil)
		case errors.Is(err, service.ErrCertificateNotFound):
			respondError(c, response.CodeNotFound, "error.certificate.not_found", nil)
		case errors.Is(err, service.ErrCertificateNoBalance):
			respondError(c, response.CodeBadRequest, "error.certificate.no_balance", nil)
		case errors.Is(err, service.ErrArchiveAmountMissing):
			respondError(c, response.CodeBadRequest, "error.certificate.amount", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{
		"transaction": txn,
		"remaining":   balance.RemainingAmount,
	})
}

// ListManualTransactions 查询某张券的人工交易历史
func (h *Handler) ListManualTransactions(c *gin.Context) {
	txns, err := h.ManualTransactionService.History(c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrCertificateCodeInvalid) {
			respondError(c, response.CodeBadRequest, "error.certificate.invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"transactions": txns})
}
