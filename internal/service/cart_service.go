package service

import (
	"strings"

	"github.com/glotree/pbb-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// CartItemInput 购物车行输入（购物车本身由店面维护，这里只做报价）
type CartItemInput struct {
	ProductID   uint         `json:"product_id"`
	VariationID uint         `json:"variation_id"`
	Name        string       `json:"name"`
	UnitPrice   models.Money `json:"unit_price"`
	Quantity    int          `json:"quantity"`
}

// CartInput 购物车报价输入
type CartInput struct {
	Items         []CartItemInput `json:"items"`
	ShippingTotal models.Money    `json:"shipping_total"`
	TaxTotal      models.Money    `json:"tax_total"`
}

// CartQuote 购物车报价结果
type CartQuote struct {
	Items         []CartItemInput `json:"items"`
	ItemsTotal    models.Money    `json:"items_total"`
	ShippingTotal models.Money    `json:"shipping_total"`
	TaxTotal      models.Money    `json:"tax_total"`
	GrandTotal    models.Money    `json:"grand_total"` // 含运费与税、未扣兑换抵扣
}

// CartService 购物车报价服务
type CartService struct {
	giftProductIDs   map[uint]struct{}
	giftVariationIDs map[uint]struct{}
}

// NewCartService 创建购物车报价服务
func NewCartService(giftProductIDs, giftVariationIDs []uint) *CartService {
	svc := &CartService{
		giftProductIDs:   make(map[uint]struct{}, len(giftProductIDs)),
		giftVariationIDs: make(map[uint]struct{}, len(giftVariationIDs)),
	}
	for _, id := range giftProductIDs {
		if id > 0 {
			svc.giftProductIDs[id] = struct{}{}
		}
	}
	for _, id := range giftVariationIDs {
		if id > 0 {
			svc.giftVariationIDs[id] = struct{}{}
		}
	}
	return svc
}

// Quote 计算购物车各项合计
func (s *CartService) Quote(input CartInput) (*CartQuote, error) {
	items := make([]CartItemInput, 0, len(input.Items))
	itemsTotal := decimal.Zero
	for _, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" || item.Quantity <= 0 {
			continue
		}
		if item.UnitPrice.Decimal.IsNegative() {
			continue
		}
		item.Name = strings.TrimSpace(item.Name)
		items = append(items, item)
		line := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		itemsTotal = itemsTotal.Add(line)
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	shipping := input.ShippingTotal.Decimal.Round(2)
	if shipping.IsNegative() {
		shipping = decimal.Zero
	}
	tax := input.TaxTotal.Decimal.Round(2)
	if tax.IsNegative() {
		tax = decimal.Zero
	}
	grand := itemsTotal.Add(shipping).Add(tax).Round(2)

	return &CartQuote{
		Items:         items,
		ItemsTotal:    models.NewMoneyFromDecimal(itemsTotal),
		ShippingTotal: models.NewMoneyFromDecimal(shipping),
		TaxTotal:      models.NewMoneyFromDecimal(tax),
		GrandTotal:    models.NewMoneyFromDecimal(grand),
	}, nil
}

// IsGiftCertificateItem 判断单行是否为礼品券商品
func (s *CartService) IsGiftCertificateItem(item CartItemInput) bool {
	if _, ok := s.giftProductIDs[item.ProductID]; ok {
		return true
	}
	if item.VariationID > 0 {
		if _, ok := s.giftVariationIDs[item.VariationID]; ok {
			return true
		}
	}
	return false
}

// HasGiftCertificate 判断购物车是否包含礼品券商品。
// 礼品券不能再用礼品券支付，兑换入口据此拒绝。
func (s *CartService) HasGiftCertificate(items []CartItemInput) bool {
	for _, item := range items {
		if s.IsGiftCertificateItem(item) {
			return true
		}
	}
	return false
}

// GiftAmountPerUnit 按行小计均摊出的单张礼品券面额。
// 留作日后发放新券使用，当前不落余额账。
func GiftAmountPerUnit(subtotal models.Money, quantity int) models.Money {
	if quantity <= 0 {
		return models.Money{}
	}
	return models.NewMoneyFromDecimal(subtotal.Decimal.Div(decimal.NewFromInt(int64(quantity))))
}
