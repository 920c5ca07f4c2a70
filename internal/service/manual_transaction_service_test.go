package service

import (
	"errors"
	"testing"
)

func TestManualTransactionServiceRecord(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.seedArchive(t)

	t.Run("items deduct from balance", func(t *testing.T) {
		items := []ManualItemInput{
			{Name: "Boarding", Price: mustMoney("15.00")},
			{Name: "Bath", Price: mustMoney("10.00")},
			{Name: "   ", Price: mustMoney("99.00")}, // 空名称行丢弃
			{Name: "Freebie", Price: mustMoney("0.00")},
		}
		txn, balance, err := env.manualSvc.Record("PBB-00055", items)
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if txn.ItemsTotal.String() != "25.00" {
			t.Fatalf("items_total want 25.00 got %s", txn.ItemsTotal.String())
		}
		if len(txn.Items) != 2 {
			t.Fatalf("items len want 2 got %d", len(txn.Items))
		}
		// 40.00 面额扣 25.00
		if balance.RemainingAmount.String() != "15.00" {
			t.Fatalf("remaining want 15.00 got %s", balance.RemainingAmount.String())
		}

		history, err := env.manualSvc.History("55")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("history len want 1 got %d", len(history))
		}
	})

	t.Run("overdraw clamps to zero", func(t *testing.T) {
		_, balance, err := env.manualSvc.Record("55", []ManualItemInput{
			{Name: "Grooming", Price: mustMoney("20.00")},
		})
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if balance.RemainingAmount.String() != "0.00" {
			t.Fatalf("remaining want 0.00 got %s", balance.RemainingAmount.String())
		}
	})

	t.Run("exhausted balance rejected", func(t *testing.T) {
		_, _, err := env.manualSvc.Record("55", []ManualItemInput{
			{Name: "Nail Trim", Price: mustMoney("5.00")},
		})
		if !errors.Is(err, ErrCertificateNoBalance) {
			t.Fatalf("want ErrCertificateNoBalance got %v", err)
		}
	})

	t.Run("all items invalid", func(t *testing.T) {
		_, _, err := env.manualSvc.Record("12", []ManualItemInput{
			{Name: "", Price: mustMoney("10.00")},
			{Name: "Negative", Price: mustMoney("-2.00")},
		})
		if !errors.Is(err, ErrManualItemsInvalid) {
			t.Fatalf("want ErrManualItemsInvalid got %v", err)
		}
	})
}
