package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glotree/pbb-ledger/internal/constants"
)

func TestOrderServiceCreateDerivesGiftAmount(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	cart := CartInput{
		Items: []CartItemInput{
			{ProductID: 901, Name: "Gift Certificate", UnitPrice: mustMoney("50.00"), Quantity: 2},
			{ProductID: 10, Name: "Nail Trim", UnitPrice: mustMoney("12.00"), Quantity: 1},
		},
	}
	order, err := env.orderSvc.Create(ctx, CreateOrderInput{
		SessionToken: "token-gift",
		Cart:         cart,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var giftLines, plainLines int
	for _, item := range order.Items {
		if item.ProductID == 901 {
			giftLines++
			if item.GiftAmount.String() != "50.00" {
				t.Fatalf("gift_amount want 50.00 got %s", item.GiftAmount.String())
			}
			continue
		}
		plainLines++
		if !item.GiftAmount.Decimal.IsZero() {
			t.Fatalf("plain line should carry no gift amount, got %s", item.GiftAmount.String())
		}
	}
	if giftLines != 1 || plainLines != 1 {
		t.Fatalf("line split want 1/1 got %d/%d", giftLines, plainLines)
	}
	if order.TotalAmount.String() != "112.00" {
		t.Fatalf("total want 112.00 got %s", order.TotalAmount.String())
	}
}

func TestOrderServiceCancel(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	order, err := env.orderSvc.Create(ctx, CreateOrderInput{
		SessionToken: "token-cancel",
		Cart:         standardCart(),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	canceled, err := env.orderSvc.Cancel(order.OrderNo)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("status want canceled got %s", canceled.Status)
	}

	// 已取消的订单不能再取消
	if _, err := env.orderSvc.Cancel(order.OrderNo); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("want ErrOrderStatusInvalid got %v", err)
	}
}
