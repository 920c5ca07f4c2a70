package service

import (
	"context"
	"testing"

	"github.com/glotree/pbb-ledger/internal/constants"
)

// 端到端：应用兑换、下单、支付到账、结算扣减、幂等重放。
func TestOrderRedemptionSettlementFlow(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.seedArchive(t)
	ctx := context.Background()

	if _, _, err := env.redeemSvc.Apply(ctx, "checkout-1", "PBB-00055", standardCart()); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	order, err := env.orderSvc.Create(ctx, CreateOrderInput{
		SessionToken:  "checkout-1",
		Cart:          standardCart(),
		CustomerEmail: "customer@example.com",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.RedeemCode != "PBB-00055" {
		t.Fatalf("redeem_code want PBB-00055 got %s", order.RedeemCode)
	}
	if order.RedeemAmount.String() != "40.00" {
		t.Fatalf("redeem_amount want 40.00 got %s", order.RedeemAmount.String())
	}
	// 55.00 购物车扣 40.00 抵扣
	if order.TotalAmount.String() != "15.00" {
		t.Fatalf("total want 15.00 got %s", order.TotalAmount.String())
	}
	var feeFound bool
	for _, item := range order.Items {
		if item.Kind == constants.OrderItemKindFee {
			feeFound = true
			if item.Name != "Gift Certificate (PBB-00055)" {
				t.Fatalf("fee name unexpected: %s", item.Name)
			}
			if item.Amount.String() != "-40.00" {
				t.Fatalf("fee amount want -40.00 got %s", item.Amount.String())
			}
		}
	}
	if !feeFound {
		t.Fatal("order should carry a fee line for the redemption")
	}
	if order.RedeemDeducted {
		t.Fatal("deduction must not happen at order creation")
	}

	paid, err := env.orderSvc.MarkPaid(ctx, order.OrderNo, constants.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.OrderStatusProcessing {
		t.Fatalf("status want processing got %s", paid.Status)
	}
	if !paid.RedeemDeducted {
		t.Fatal("settlement should have claimed the deduction flag")
	}

	balance, err := env.certSvc.GetByCode("PBB-00055")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance.RemainingAmount.String() != "0.00" {
		t.Fatalf("remaining want 0.00 got %s", balance.RemainingAmount.String())
	}

	logs, err := env.logRepo.ListBySerial(55)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("logs len want 1 got %d", len(logs))
	}
	if logs[0].Amount.String() != "40.00" || logs[0].Remaining.String() != "0.00" {
		t.Fatalf("log amounts unexpected: amount=%s remaining=%s", logs[0].Amount.String(), logs[0].Remaining.String())
	}

	// 结算后会话里的兑换意向被清掉
	state, err := env.sessions.Get(ctx, "checkout-1")
	if err != nil {
		t.Fatalf("session get failed: %v", err)
	}
	if state != nil {
		t.Fatal("session state should be cleared after settlement")
	}

	// 幂等：重复结算不再扣减
	if err := env.settlementSvc.HandleOrderPaid(ctx, order.ID); err != nil {
		t.Fatalf("replay settlement failed: %v", err)
	}
	balance, err = env.certSvc.GetByCode("PBB-00055")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance.RemainingAmount.String() != "0.00" {
		t.Fatalf("replay must not deduct again, remaining=%s", balance.RemainingAmount.String())
	}
	logs, err = env.logRepo.ListBySerial(55)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("replay must not append logs, len=%d", len(logs))
	}
}

func TestSettlementServiceSkipsOrdersWithoutRedemption(t *testing.T) {
	env := setupServiceTestEnv(t)
	ctx := context.Background()

	order, err := env.orderSvc.Create(ctx, CreateOrderInput{Cart: standardCart()})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.RedeemCode != "" {
		t.Fatal("order should carry no redemption snapshot")
	}
	if _, err := env.orderSvc.MarkPaid(ctx, order.OrderNo, constants.OrderStatusCompleted); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if err := env.settlementSvc.HandleOrderPaid(ctx, order.ID); err != nil {
		t.Fatalf("settlement on plain order should be a no-op, got %v", err)
	}
}

func TestSettlementServiceRequiresPaidStatus(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.seedArchive(t)
	ctx := context.Background()

	if _, _, err := env.redeemSvc.Apply(ctx, "checkout-2", "PBB-00055", standardCart()); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	order, err := env.orderSvc.Create(ctx, CreateOrderInput{SessionToken: "checkout-2", Cart: standardCart()})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 订单还在待支付，结算必须拒绝
	if err := env.settlementSvc.HandleOrderPaid(ctx, order.ID); err != ErrOrderStatusInvalid {
		t.Fatalf("want ErrOrderStatusInvalid got %v", err)
	}
	balance, err := env.certSvc.GetByCode("PBB-00055")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance.RemainingAmount.String() != "40.00" {
		t.Fatalf("balance must be untouched, remaining=%s", balance.RemainingAmount.String())
	}
}
