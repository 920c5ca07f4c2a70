package provider

import (
	"time"

	"github.com/glotree/pbb-ledger/internal/cache"
	"github.com/glotree/pbb-ledger/internal/certcode"
	"github.com/glotree/pbb-ledger/internal/config"
	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/models"
	"github.com/glotree/pbb-ledger/internal/queue"
	"github.com/glotree/pbb-ledger/internal/repository"
	"github.com/glotree/pbb-ledger/internal/service"
	"github.com/glotree/pbb-ledger/internal/session"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	SessionStore session.Store

	// Repositories
	CertificateRepo       repository.CertificateRepository
	InquiryRepo           repository.InquiryRepository
	ManualTransactionRepo repository.ManualTransactionRepository
	OrderRepo             repository.OrderRepository
	RedemptionLogRepo     repository.RedemptionLogRepository

	// Services
	ArchiveService           *service.ArchiveService
	CertificateService       *service.CertificateService
	CartService              *service.CartService
	RedemptionService        *service.RedemptionService
	SettlementService        *service.SettlementService
	OrderService             *service.OrderService
	ManualTransactionService *service.ManualTransactionService
	LedgerService            *service.LedgerService
	AuthService              *service.AuthService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化会话存储
	c.initSessionStore()

	// 2. 初始化 Repositories
	c.initRepositories()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initSessionStore() {
	ttl := time.Duration(c.Config.Session.TTLSeconds) * time.Second
	if cache.Enabled() {
		c.SessionStore = session.NewRedisStore(ttl)
		return
	}
	logger.Warnw("provider_session_store_fallback", "store", "memory")
	c.SessionStore = session.NewMemoryStore(ttl)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CertificateRepo = repository.NewCertificateRepository(db)
	c.InquiryRepo = repository.NewInquiryRepository(db)
	c.ManualTransactionRepo = repository.NewManualTransactionRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.RedemptionLogRepo = repository.NewRedemptionLogRepository(db)
}

func (c *Container) initServices() {
	codec := certcode.Config{
		Prefix: c.Config.Certificate.Prefix,
		Pad:    c.Config.Certificate.Pad,
	}
	currency := c.Config.Certificate.Currency

	c.ArchiveService = service.NewArchiveService(c.InquiryRepo, codec)
	c.CertificateService = service.NewCertificateService(c.CertificateRepo, c.ArchiveService, codec, currency)
	c.CartService = service.NewCartService(
		c.Config.Certificate.GiftProductIDs,
		c.Config.Certificate.GiftVariationIDs,
	)
	c.RedemptionService = service.NewRedemptionService(c.CertificateService, c.CartService, c.SessionStore)
	c.SettlementService = service.NewSettlementService(c.OrderRepo, c.CertificateRepo, c.RedemptionLogRepo, c.SessionStore)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.CertificateService,
		c.CartService,
		c.SessionStore,
		c.SettlementService,
		c.QueueClient,
		currency,
	)
	c.ManualTransactionService = service.NewManualTransactionService(
		c.ManualTransactionRepo,
		c.CertificateRepo,
		c.OrderRepo,
		c.CertificateService,
	)
	c.LedgerService = service.NewLedgerService(
		c.CertificateService,
		c.ArchiveService,
		c.OrderRepo,
		c.ManualTransactionRepo,
		c.RedemptionLogRepo,
	)
	c.AuthService = service.NewAuthService(c.Config.Staff, c.Config.Security.LoginRateLimit)
}
