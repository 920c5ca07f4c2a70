package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glotree/pbb-ledger/internal/constants"
	"github.com/glotree/pbb-ledger/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCertificateRepositoryTest(t *testing.T) (*GormCertificateRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cert_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CertificateBalance{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCertificateRepository(db), db
}

func createTestBalance(t *testing.T, db *gorm.DB, code string, serial int64, remaining string, status string) *models.CertificateBalance {
	t.Helper()
	now := time.Now()
	balance := &models.CertificateBalance{
		CertCode:        code,
		SerialRaw:       serial,
		OriginalAmount:  models.NewMoneyFromDecimal(decimal.RequireFromString(remaining)),
		RemainingAmount: models.NewMoneyFromDecimal(decimal.RequireFromString(remaining)),
		Currency:        "USD",
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := db.Create(balance).Error; err != nil {
		t.Fatalf("create balance failed: %v", err)
	}
	return balance
}

func TestCertificateRepositoryDeduct(t *testing.T) {
	repo, db := setupCertificateRepositoryTest(t)

	t.Run("partial deduct", func(t *testing.T) {
		balance := createTestBalance(t, db, "PBB-00001", 1, "40.00", constants.CertificateStatusActive)
		updated, err := repo.Deduct(balance.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")), 0)
		if err != nil {
			t.Fatalf("deduct failed: %v", err)
		}
		if updated == nil {
			t.Fatal("expected updated balance, got nil")
		}
		if updated.RemainingAmount.String() != "30.00" {
			t.Fatalf("remaining want 30.00 got %s", updated.RemainingAmount.String())
		}
	})

	t.Run("deduct larger than remaining clamps to zero", func(t *testing.T) {
		balance := createTestBalance(t, db, "PBB-00002", 2, "40.00", constants.CertificateStatusActive)
		updated, err := repo.Deduct(balance.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("55.00")), 7)
		if err != nil {
			t.Fatalf("deduct failed: %v", err)
		}
		if updated == nil {
			t.Fatal("expected updated balance, got nil")
		}
		if updated.RemainingAmount.String() != "0.00" {
			t.Fatalf("remaining want 0.00 got %s", updated.RemainingAmount.String())
		}
		if updated.LastOrderID == nil || *updated.LastOrderID != 7 {
			t.Fatalf("last_order_id want 7 got %v", updated.LastOrderID)
		}
	})

	t.Run("exhausted balance rejects further deduct", func(t *testing.T) {
		balance := createTestBalance(t, db, "PBB-00003", 3, "20.00", constants.CertificateStatusActive)
		if _, err := repo.Deduct(balance.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("20.00")), 0); err != nil {
			t.Fatalf("first deduct failed: %v", err)
		}
		updated, err := repo.Deduct(balance.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")), 0)
		if err != nil {
			t.Fatalf("second deduct failed: %v", err)
		}
		if updated != nil {
			t.Fatalf("expected nil for exhausted balance, got remaining=%s", updated.RemainingAmount.String())
		}
	})

	t.Run("void balance rejects deduct", func(t *testing.T) {
		balance := createTestBalance(t, db, "PBB-00004", 4, "30.00", constants.CertificateStatusVoid)
		updated, err := repo.Deduct(balance.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("5.00")), 0)
		if err != nil {
			t.Fatalf("deduct failed: %v", err)
		}
		if updated != nil {
			t.Fatal("expected nil for void balance")
		}
	})

	t.Run("non positive amount is a no-op", func(t *testing.T) {
		balance := createTestBalance(t, db, "PBB-00005", 5, "30.00", constants.CertificateStatusActive)
		updated, err := repo.Deduct(balance.ID, models.Money{}, 0)
		if err != nil {
			t.Fatalf("deduct failed: %v", err)
		}
		if updated != nil {
			t.Fatal("expected nil for zero amount")
		}
	})
}

func TestCertificateRepositorySetRemaining(t *testing.T) {
	repo, db := setupCertificateRepositoryTest(t)
	balance := createTestBalance(t, db, "PBB-00010", 10, "40.00", constants.CertificateStatusActive)

	updated, err := repo.SetRemaining(balance.ID, models.NewMoneyFromDecimal(decimal.RequireFromString("-3.00")))
	if err != nil {
		t.Fatalf("set remaining failed: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated balance, got nil")
	}
	if updated.RemainingAmount.String() != "0.00" {
		t.Fatalf("negative remaining should clamp to 0.00, got %s", updated.RemainingAmount.String())
	}
}

func TestCertificateRepositoryLookups(t *testing.T) {
	repo, db := setupCertificateRepositoryTest(t)
	createTestBalance(t, db, "PBB-00055", 55, "40.00", constants.CertificateStatusActive)

	byCode, err := repo.GetByCode("pbb-00055")
	if err != nil {
		t.Fatalf("get by code failed: %v", err)
	}
	if byCode == nil || byCode.SerialRaw != 55 {
		t.Fatalf("get by code want serial 55 got %+v", byCode)
	}

	bySerial, err := repo.GetBySerial(55)
	if err != nil {
		t.Fatalf("get by serial failed: %v", err)
	}
	if bySerial == nil || bySerial.ID != byCode.ID {
		t.Fatal("get by serial should resolve the same row")
	}

	missing, err := repo.GetByCode("PBB-09999")
	if err != nil {
		t.Fatalf("get missing failed: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing code")
	}
}

func TestCertificateRepositoryDeductConcurrent(t *testing.T) {
	repo, db := setupCertificateRepositoryTest(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle failed: %v", err)
	}
	// sqlite 写入收敛到单连接，并发正确性由 CASE 钳位的条件 UPDATE 保证
	sqlDB.SetMaxOpenConns(1)

	balance := createTestBalance(t, db, "PBB-00030", 30, "40.00", constants.CertificateStatusActive)
	amount := models.NewMoneyFromDecimal(decimal.RequireFromString("7.00"))

	const workers = 8
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Deduct(balance.ID, amount, 0); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("deduct failed: %v", err)
	}

	final, err := repo.GetByID(balance.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if final == nil {
		t.Fatal("balance row disappeared")
	}
	if final.RemainingAmount.Decimal.IsNegative() {
		t.Fatalf("remaining went negative: %s", final.RemainingAmount.String())
	}
	// 8 次 7.00 的并发扣减合计 56.00，超过面额，余额必须正好停在 0
	if final.RemainingAmount.String() != "0.00" {
		t.Fatalf("remaining want 0.00 got %s", final.RemainingAmount.String())
	}
}
