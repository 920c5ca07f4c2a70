package main

import (
	"fmt"
	"time"

	"github.com/glotree/pbb-ledger/internal/config"
	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()

	// 归档留言样例：键名约定跨年代漂移，解析逻辑必须覆盖所有形态
	inquiries := []models.InquiryRecord{
		{
			// 早期记录：序列号在带下划线前缀的键里，面额只出现在正文
			Subject:   "Gift Certificate Purchase",
			FromName:  "Margaret Ellison",
			FromEmail: "m.ellison@example.com",
			Body:      "Hi, I would like to purchase a gift certificate for $75 for my daughter's new puppy. Thank you!",
			Fields: models.JSON(map[string]interface{}{
				"_field_serial_number": "12",
				"_field_recipient":     "Sarah Ellison",
			}),
			CreatedAt: now.AddDate(-3, 0, 0),
		},
		{
			// 结构化记录：标准键名，面额字段齐全
			Subject:   "Gift Certificate Order",
			FromName:  "Tom Harker",
			FromEmail: "tharker@example.com",
			Body:      "Gift certificate order placed via website form.",
			Fields: models.JSON(map[string]interface{}{
				"serial_number": "55",
				"amount":        "40.00",
				"recipient":     "Janet Harker",
			}),
			CreatedAt: now.AddDate(-1, -2, 0),
		},
		{
			// 中期记录：嵌套 value 包装，面额键为 gift_amount
			Subject:   "Certificate Request",
			FromName:  "Priya Nair",
			FromEmail: "priya.n@example.com",
			Body:      "Please issue a certificate for grooming services.",
			Fields: models.JSON(map[string]interface{}{
				"serial-number": map[string]interface{}{"value": "103"},
				"gift_amount":   map[string]interface{}{"value": "120"},
			}),
			CreatedAt: now.AddDate(-2, -6, 0),
		},
		{
			// 旧版记录：字段包为空，数据全在序列化 Meta 文本里
			Subject:   "GC purchase",
			FromName:  "Dale Whitfield",
			FromEmail: "dale.w@example.com",
			Body:      "Submitted by phone, recorded manually.",
			Meta:      `{"serialnumber":"208","giftamount":"60.00","phone":"555-0182"}`,
			CreatedAt: now.AddDate(-4, -1, 0),
		},
	}

	for _, rec := range inquiries {
		var existing models.InquiryRecord
		if err := models.DB.Where("from_email = ? AND subject = ?", rec.FromEmail, rec.Subject).First(&existing).Error; err != nil {
			if err := models.DB.Create(&rec).Error; err != nil {
				stdLog.Printf("Failed to create inquiry from %s: %v", rec.FromEmail, err)
			} else {
				stdLog.Printf("Created inquiry: %s", rec.FromEmail)
			}
		} else {
			stdLog.Printf("Inquiry already exists: %s", rec.FromEmail)
		}
	}

	fmt.Println("\nSeed data created.")
	fmt.Println("Summary:")
	fmt.Println("- 4 archive inquiry records (serials 12, 55, 103, 208)")
	fmt.Println("Balances materialize on first lookup; no certificate rows are pre-created.")
}
