package session

import (
	"context"
	"testing"
	"time"

	"github.com/glotree/pbb-ledger/internal/models"

	"github.com/shopspring/decimal"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	state := &RedeemState{
		CertCode:  "PBB-00055",
		SerialRaw: 55,
		Amount:    models.NewMoneyFromDecimal(decimal.RequireFromString("40.00")),
		AppliedAt: time.Now(),
	}
	if err := store.Set(ctx, "token-1", state); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := store.Get(ctx, "token-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.CertCode != "PBB-00055" || got.Amount.String() != "40.00" {
		t.Fatalf("unexpected state: %+v", got)
	}

	if err := store.Unset(ctx, "token-1"); err != nil {
		t.Fatalf("unset failed: %v", err)
	}
	got, err = store.Get(ctx, "token-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("state should be gone after unset")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	if err := store.Set(ctx, "token-2", &RedeemState{CertCode: "PBB-00012"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	got, err := store.Get(ctx, "token-2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("expired state should not be returned")
	}
}

func TestMemoryStoreIgnoresBlankTokens(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "  ", &RedeemState{CertCode: "PBB-00001"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := store.Get(ctx, "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatal("blank token should never resolve a state")
	}
}
