package i18n

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const defaultLocale = "en-US"

// catalog 错误键翻译表，目前只维护英文文案
var catalog = map[string]map[string]string{
	"en-US": {
		"error.bad_request":             "Invalid request",
		"error.unauthorized":            "Unauthorized",
		"error.forbidden":               "Forbidden",
		"error.not_found":               "Not found",
		"error.internal":                "Internal error",
		"error.too_many_requests":       "Too many requests, try again later",
		"error.certificate.invalid":     "That gift certificate code is not valid",
		"error.certificate.not_found":   "No gift certificate purchase was found for that code",
		"error.certificate.no_balance":  "That gift certificate has no remaining balance",
		"error.certificate.amount":      "The purchase record for that code has no readable amount",
		"error.certificate.in_cart":     "Gift certificates cannot be used to buy gift certificates",
		"error.cart.empty":              "Cart is empty",
		"error.manual.items_invalid":    "At least one item with a name and positive amount is required",
		"error.order.not_found":         "Order not found",
		"error.order.status_invalid":    "Order status does not allow this action",
		"error.login.invalid":           "Invalid username or password",
		"error.login.rate_limited":      "Too many login attempts, try again later",
	},
}

// T 按语言环境翻译键，没有译文时原样返回键
func T(locale, key string) string {
	if messages, ok := catalog[locale]; ok {
		if message, ok := messages[key]; ok {
			return message
		}
	}
	if locale != defaultLocale {
		if message, ok := catalog[defaultLocale][key]; ok {
			return message
		}
	}
	return key
}

// ResolveLocale 从请求头解析语言环境
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	header := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if header == "" {
		return defaultLocale
	}
	primary := strings.TrimSpace(strings.Split(header, ",")[0])
	if _, ok := catalog[primary]; ok {
		return primary
	}
	return defaultLocale
}
