package service

import "errors"

// 业务错误定义，处理器按 errors.Is 映射为响应码
var (
	ErrCertificateCodeInvalid  = errors.New("certificate code invalid")
	ErrCertificateNotFound     = errors.New("certificate not found")
	ErrCertificateNoBalance    = errors.New("certificate has no remaining balance")
	ErrCertificateCreateFailed = errors.New("certificate create failed")
	ErrArchiveAmountMissing    = errors.New("archive record has no readable amount")
	ErrManualItemsInvalid      = errors.New("manual transaction items invalid")
	ErrManualTransactionFailed = errors.New("manual transaction create failed")
	ErrCartEmpty               = errors.New("cart is empty")
	ErrGiftCertificateInCart   = errors.New("cart contains a gift certificate product")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderCreateFailed       = errors.New("order create failed")
	ErrOrderStatusInvalid      = errors.New("order status invalid")
	ErrLoginInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRateLimited        = errors.New("too many login attempts")
	ErrTokenInvalid            = errors.New("token invalid")
)
