package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/glotree/pbb-ledger/internal/http/handlers/shared"
	"github.com/glotree/pbb-ledger/internal/http/response"
	"github.com/glotree/pbb-ledger/internal/repository"
	"github.com/glotree/pbb-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCertificates 查询余额记录列表
func (h *Handler) ListCertificates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	balances, total, err := h.CertificateService.List(repository.CertificateListFilter{
		Code:     c.Query("code"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := handlershared.BuildPagination(page, pageSize, total)

	// 附带档案里尚未建账的序列号，只在首页返回
	if c.Query("include_archive") == "true" && page == 1 {
		archiveOnly, err := h.CertificateService.ListArchiveOnly(pageSize)
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		response.SuccessWithPage(c, gin.H{
			"balances":     balances,
			"archive_only": archiveOnly,
		}, pagination)
		return
	}
	response.SuccessWithPage(c, balances, pagination)
}

// GetLedger 查看单张券的完整台账（含对账结果）
func (h *Handler) GetLedger(c *gin.Context) {
	view, err := h.LedgerService.View(c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCertificateCodeInvalid):
			respondError(c, response.CodeBadRequest, "error.certificate.invalid", nil)
		case errors.Is(err, service.ErrCertificateNotFound):
			respondError(c, response.CodeNotFound, "error.certificate.not_found", nil)
		case errors.Is(err, service.ErrArchiveAmountMissing):
			respondError(c, response.CodeBadRequest, "error.certificate.amount", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	if view.Reconciliation != nil && view.Reconciliation.Discrepancy {
		requestLog(c).Warnw("ledger_discrepancy",
			"cert_code", view.CertCode,
			"remaining", view.RemainingAmount.String(),
			"expected", view.Reconciliation.ExpectedRemaining.String(),
		)
	}
	response.Success(c, view)
}

// ListOrders 查询订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.List(repository.OrderListFilter{
		OrderNo:  c.Query("order_no"),
		Status:   c.Query("status"),
		Email:    c.Query("email"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}
