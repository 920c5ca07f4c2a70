package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glotree/pbb-ledger/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupInquiryRepositoryTest(t *testing.T) (*GormInquiryRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:inquiry_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.InquiryRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewInquiryRepository(db), db
}

func seedInquiryRecords(t *testing.T, repo *GormInquiryRepository) {
	t.Helper()
	now := time.Now()
	records := []*models.InquiryRecord{
		{
			Subject:   "Gift Certificate Purchase",
			FromEmail: "a@example.com",
			Body:      "I would like a gift certificate for $75 please.",
			Fields: models.JSON(map[string]interface{}{
				"_field_serial_number": "12",
			}),
			CreatedAt: now.Add(-72 * time.Hour),
		},
		{
			Subject:   "Gift Certificate Order",
			FromEmail: "b@example.com",
			Body:      "Order via web form.",
			Fields: models.JSON(map[string]interface{}{
				"serial_number": "55",
				"amount":        "40.00",
			}),
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			Subject:   "GC purchase",
			FromEmail: "c@example.com",
			Body:      "Recorded by phone.",
			Meta:      `{"serialnumber":"208","giftamount":"60.00"}`,
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}
	for _, rec := range records {
		if err := repo.Create(rec); err != nil {
			t.Fatalf("create inquiry failed: %v", err)
		}
	}
}

func TestInquiryRepositoryFindBySerialValues(t *testing.T) {
	repo, _ := setupInquiryRepositoryTest(t)
	seedInquiryRecords(t, repo)

	t.Run("standard key", func(t *testing.T) {
		record, err := repo.FindBySerialValues([]string{"55", "00055", "PBB-00055"})
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if record == nil {
			t.Fatal("expected record for serial 55")
		}
		if record.FromEmail != "b@example.com" {
			t.Fatalf("unexpected record: %s", record.FromEmail)
		}
	})

	t.Run("underscore prefixed key", func(t *testing.T) {
		record, err := repo.FindBySerialValues([]string{"12", "00012"})
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if record == nil {
			t.Fatal("expected record for serial 12")
		}
		if record.FromEmail != "a@example.com" {
			t.Fatalf("unexpected record: %s", record.FromEmail)
		}
	})

	t.Run("no match", func(t *testing.T) {
		record, err := repo.FindBySerialValues([]string{"9999"})
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if record != nil {
			t.Fatalf("expected nil, got record from %s", record.FromEmail)
		}
	})
}

func TestInquiryRepositoryScanByLooseMatch(t *testing.T) {
	repo, _ := setupInquiryRepositoryTest(t)
	seedInquiryRecords(t, repo)

	// 旧版记录的序列号只在 meta 文本里，结构化匹配拿不到
	records, err := repo.ScanByLooseMatch([]string{"208"}, 0)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	found := false
	for _, rec := range records {
		if rec.FromEmail == "c@example.com" {
			found = true
		}
	}
	if !found {
		t.Fatal("loose scan should surface the legacy meta record")
	}
}
