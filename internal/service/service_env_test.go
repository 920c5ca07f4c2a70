package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glotree/pbb-ledger/internal/certcode"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/repository"
	"github.com/glotree/pbb-ledger/internal/session"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// serviceTestEnv 测试用完整服务装配（内存 sqlite + 进程内会话存储，不依赖外部组件）
type serviceTestEnv struct {
	db *gorm.DB

	certRepo    *repository.GormCertificateRepository
	inquiryRepo *repository.GormInquiryRepository
	orderRepo   *repository.GormOrderRepository
	manualRepo  *repository.GormManualTransactionRepository
	logRepo     *repository.GormRedemptionLogRepository

	sessions *session.MemoryStore

	archiveSvc    *ArchiveService
	certSvc       *CertificateService
	cartSvc       *CartService
	redeemSvc     *RedemptionService
	settlementSvc *SettlementService
	orderSvc      *OrderService
	manualSvc     *ManualTransactionService
	ledgerSvc     *LedgerService
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.CertificateBalance{},
		&models.ManualTransaction{},
		&models.InquiryRecord{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderNote{},
		&models.RedemptionLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	env := &serviceTestEnv{
		db:          db,
		certRepo:    repository.NewCertificateRepository(db),
		inquiryRepo: repository.NewInquiryRepository(db),
		orderRepo:   repository.NewOrderRepository(db),
		manualRepo:  repository.NewManualTransactionRepository(db),
		logRepo:     repository.NewRedemptionLogRepository(db),
		sessions:    session.NewMemoryStore(time.Hour),
	}

	codec := certcode.Default()
	env.archiveSvc = NewArchiveService(env.inquiryRepo, codec)
	env.certSvc = NewCertificateService(env.certRepo, env.archiveSvc, codec, "USD")
	env.cartSvc = NewCartService([]uint{901}, []uint{9001})
	env.redeemSvc = NewRedemptionService(env.certSvc, env.cartSvc, env.sessions)
	env.settlementSvc = NewSettlementService(env.orderRepo, env.certRepo, env.logRepo, env.sessions)
	env.orderSvc = NewOrderService(env.orderRepo, env.certSvc, env.cartSvc, env.sessions, env.settlementSvc, nil, "USD")
	env.manualSvc = NewManualTransactionService(env.manualRepo, env.certRepo, env.orderRepo, env.certSvc)
	env.ledgerSvc = NewLedgerService(env.certSvc, env.archiveSvc, env.orderRepo, env.manualRepo, env.logRepo)
	return env
}

// seedArchive 写入历史档案样例：
//   - 序列号 12：带下划线前缀键，面额只出现在正文（$75）
//   - 序列号 55：标准键名，面额字段 40.00
//   - 序列号 77：有序列号但面额无从得知
func (env *serviceTestEnv) seedArchive(t *testing.T) {
	t.Helper()
	now := time.Now()
	records := []*models.InquiryRecord{
		{
			Subject:   "Gift Certificate Purchase",
			FromEmail: "buyer12@example.com",
			Body:      "Hi, I would like a gift certificate for $75 for my daughter's puppy.",
			Fields: models.JSON(map[string]interface{}{
				"_field_serial_number": "12",
			}),
			CreatedAt: now.Add(-96 * time.Hour),
		},
		{
			Subject:   "Gift Certificate Order",
			FromName:  "Pat Buyer",
			FromEmail: "buyer55@example.com",
			Body:      "Order placed via website form.",
			Fields: models.JSON(map[string]interface{}{
				"serial_number":  "55",
				"amount":         "40.00",
				"Recipient.Name": "Daisy",
			}),
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			Subject:   "Certificate inquiry",
			FromEmail: "buyer77@example.com",
			Body:      "Please call me back about the certificate.",
			Fields: models.JSON(map[string]interface{}{
				"serial_number": "77",
			}),
			CreatedAt: now.Add(-24 * time.Hour),
		},
	}
	for _, rec := range records {
		if err := env.inquiryRepo.Create(rec); err != nil {
			t.Fatalf("seed inquiry failed: %v", err)
		}
	}
}

// standardCart 返回合计 55.00 的购物车（50 商品 + 3 运费 + 2 税）
func standardCart() CartInput {
	return CartInput{
		Items: []CartItemInput{
			{ProductID: 10, Name: "Deluxe Grooming Package", UnitPrice: mustMoney("50.00"), Quantity: 1},
		},
		ShippingTotal: mustMoney("3.00"),
		TaxTotal:      mustMoney("2.00"),
	}
}

func mustMoney(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}
