package service

import (
	"testing"

	"github.com/glotree/pbb-ledger/internal/models"
)

func TestArchiveServiceExtractAmount(t *testing.T) {
	env := setupServiceTestEnv(t)

	tests := []struct {
		name   string
		record models.InquiryRecord
		want   string
		found  bool
	}{
		{
			name: "standard amount field",
			record: models.InquiryRecord{
				Fields: models.JSON(map[string]interface{}{"amount": "40.00"}),
			},
			want:  "40.00",
			found: true,
		},
		{
			name: "variant key with nested value wrapper",
			record: models.InquiryRecord{
				Fields: models.JSON(map[string]interface{}{
					"Gift-Amount": map[string]interface{}{"value": "120"},
				}),
			},
			want:  "120.00",
			found: true,
		},
		{
			name: "amount buried in a nested bag",
			record: models.InquiryRecord{
				Fields: models.JSON(map[string]interface{}{
					"form": map[string]interface{}{
						"giftamount": 65.5,
					},
				}),
			},
			want:  "65.50",
			found: true,
		},
		{
			name: "dollar prefixed field value",
			record: models.InquiryRecord{
				Fields: models.JSON(map[string]interface{}{"_gift_certificate_amount": "$1,250.00"}),
			},
			want:  "1250.00",
			found: true,
		},
		{
			name: "legacy meta bag",
			record: models.InquiryRecord{
				Meta: `{"serialnumber":"208","giftamount":"60.00"}`,
			},
			want:  "60.00",
			found: true,
		},
		{
			name: "body fallback",
			record: models.InquiryRecord{
				Body: "I would like to purchase a gift certificate for $75 please.",
			},
			want:  "75.00",
			found: true,
		},
		{
			name: "nothing readable",
			record: models.InquiryRecord{
				Body:   "Please call me back.",
				Fields: models.JSON(map[string]interface{}{"serial_number": "77"}),
			},
			found: false,
		},
		{
			name: "non positive amount rejected",
			record: models.InquiryRecord{
				Fields: models.JSON(map[string]interface{}{"amount": "0"}),
			},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := env.archiveSvc.ExtractAmount(&tt.record)
			if ok != tt.found {
				t.Fatalf("found want %v got %v", tt.found, ok)
			}
			if tt.found && amount.String() != tt.want {
				t.Fatalf("amount want %s got %s", tt.want, amount.String())
			}
		})
	}
}

func TestArchiveServiceFindRecordBySerial(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.seedArchive(t)

	t.Run("structured match", func(t *testing.T) {
		lookup, err := env.archiveSvc.FindRecordBySerial(55, "PBB-00055")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if lookup.Record == nil {
			t.Fatal("expected record for serial 55")
		}
		if lookup.Record.FromEmail != "buyer55@example.com" {
			t.Fatalf("unexpected record %s", lookup.Record.FromEmail)
		}
	})

	t.Run("loose scan confirms serial before accepting", func(t *testing.T) {
		// 序列号 208 只存在于旧版 meta 文本里
		if err := env.inquiryRepo.Create(&models.InquiryRecord{
			Subject:   "GC purchase",
			FromEmail: "legacy@example.com",
			Meta:      `{"serialnumber":"208","giftamount":"60.00"}`,
		}); err != nil {
			t.Fatalf("seed legacy record failed: %v", err)
		}
		lookup, err := env.archiveSvc.FindRecordBySerial(208, "208")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if lookup.Record == nil || lookup.Record.FromEmail != "legacy@example.com" {
			t.Fatalf("expected legacy record, got %+v", lookup.Record)
		}
	})

	t.Run("substring hits are not accepted", func(t *testing.T) {
		// 正文里出现 1255 不等于序列号 125
		if err := env.inquiryRepo.Create(&models.InquiryRecord{
			Subject:   "Unrelated",
			FromEmail: "noise@example.com",
			Body:      "Invoice 1255 attached.",
		}); err != nil {
			t.Fatalf("seed noise record failed: %v", err)
		}
		lookup, err := env.archiveSvc.FindRecordBySerial(125, "125")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if lookup.Record != nil {
			t.Fatalf("expected no record, got %s", lookup.Record.FromEmail)
		}
	})
}

func TestArchiveServiceExtractField(t *testing.T) {
	env := setupServiceTestEnv(t)

	t.Run("key variants normalize to the same field", func(t *testing.T) {
		// 表单版本漂移出过的各种键写法都要能对上标准键
		for _, key := range []string{"serial_number", "Serial.Number", "Serial  Number", "serial/number", "_serial-number"} {
			record := &models.InquiryRecord{
				Fields: models.JSON(map[string]interface{}{key: "55"}),
			}
			if got := env.archiveSvc.ExtractField(record, "serial_number"); got != "55" {
				t.Fatalf("key %q: want 55 got %q", key, got)
			}
		}
	})

	t.Run("wrapped and nested values", func(t *testing.T) {
		record := &models.InquiryRecord{
			Fields: models.JSON(map[string]interface{}{
				"extra": map[string]interface{}{
					"Recipient-Name": map[string]interface{}{"value": "Daisy"},
				},
			}),
		}
		if got := env.archiveSvc.ExtractField(record, "recipient_name"); got != "Daisy" {
			t.Fatalf("want Daisy got %q", got)
		}
	})

	t.Run("legacy meta fallback", func(t *testing.T) {
		record := &models.InquiryRecord{
			Meta: `{"purchasername":"Pat","phone":"555-0182"}`,
		}
		if got := env.archiveSvc.ExtractField(record, "purchasername"); got != "Pat" {
			t.Fatalf("want Pat got %q", got)
		}
	})

	t.Run("missing field and nil record", func(t *testing.T) {
		record := &models.InquiryRecord{
			Fields: models.JSON(map[string]interface{}{"amount": "40.00"}),
		}
		if got := env.archiveSvc.ExtractField(record, "recipient_name"); got != "" {
			t.Fatalf("want empty got %q", got)
		}
		if got := env.archiveSvc.ExtractField(nil, "amount"); got != "" {
			t.Fatalf("nil record should yield empty, got %q", got)
		}
	})
}
