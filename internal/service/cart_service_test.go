package service

import (
	"errors"
	"testing"
)

func TestCartServiceQuote(t *testing.T) {
	svc := NewCartService([]uint{901}, []uint{9001})

	t.Run("totals include shipping and tax", func(t *testing.T) {
		quote, err := svc.Quote(standardCart())
		if err != nil {
			t.Fatalf("quote failed: %v", err)
		}
		if quote.ItemsTotal.String() != "50.00" {
			t.Fatalf("items_total want 50.00 got %s", quote.ItemsTotal.String())
		}
		if quote.GrandTotal.String() != "55.00" {
			t.Fatalf("grand_total want 55.00 got %s", quote.GrandTotal.String())
		}
	})

	t.Run("invalid lines are dropped", func(t *testing.T) {
		cart := CartInput{
			Items: []CartItemInput{
				{Name: "Bath", UnitPrice: mustMoney("10.00"), Quantity: 2},
				{Name: "", UnitPrice: mustMoney("99.00"), Quantity: 1},
				{Name: "Zero Qty", UnitPrice: mustMoney("5.00"), Quantity: 0},
				{Name: "Negative", UnitPrice: mustMoney("-3.00"), Quantity: 1},
			},
			ShippingTotal: mustMoney("-4.00"), // 负运费归零
		}
		quote, err := svc.Quote(cart)
		if err != nil {
			t.Fatalf("quote failed: %v", err)
		}
		if len(quote.Items) != 1 {
			t.Fatalf("items len want 1 got %d", len(quote.Items))
		}
		if quote.GrandTotal.String() != "20.00" {
			t.Fatalf("grand_total want 20.00 got %s", quote.GrandTotal.String())
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		_, err := svc.Quote(CartInput{})
		if !errors.Is(err, ErrCartEmpty) {
			t.Fatalf("want ErrCartEmpty got %v", err)
		}
	})
}

func TestCartServiceHasGiftCertificate(t *testing.T) {
	svc := NewCartService([]uint{901}, []uint{9001})

	if svc.HasGiftCertificate(standardCart().Items) {
		t.Fatal("plain cart should not be flagged")
	}
	if !svc.HasGiftCertificate([]CartItemInput{{ProductID: 901, Name: "Gift Certificate", UnitPrice: mustMoney("50.00"), Quantity: 1}}) {
		t.Fatal("gift product id should be flagged")
	}
	if !svc.HasGiftCertificate([]CartItemInput{{ProductID: 7, VariationID: 9001, Name: "Gift Card $50", UnitPrice: mustMoney("50.00"), Quantity: 1}}) {
		t.Fatal("gift variation id should be flagged")
	}
}
