package router

import (
	"github.com/glotree/pbb-ledger/internal/config"
	adminhandlers "github.com/glotree/pbb-ledger/internal/http/handlers/admin"
	publichandlers "github.com/glotree/pbb-ledger/internal/http/handlers/public"
	"github.com/glotree/pbb-ledger/internal/logger"
	"github.com/glotree/pbb-ledger/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口（店面结账与顾客自助查询）
		public := apiV1.Group("/public")
		{
			public.POST("/balance", publicHandler.CheckBalance)
			public.GET("/redeem", publicHandler.RedeemState)
			public.POST("/redeem/apply", publicHandler.ApplyRedeem)
			public.POST("/redeem/remove", publicHandler.RemoveRedeem)
			public.POST("/cart/quote", publicHandler.QuoteCart)
			public.POST("/orders", publicHandler.CreateOrder)
			public.GET("/orders/:order_no", publicHandler.GetOrder)
			public.POST("/payments/webhook", publicHandler.PaymentWebhook)
		}

		// 店员认证接口
		auth := apiV1.Group("/admin/auth")
		{
			auth.POST("/login", adminHandler.Login)
		}

		// 店员接口（需鉴权）
		admin := apiV1.Group("/admin")
		admin.Use(StaffAuthMiddleware(c.AuthService))
		{
			admin.GET("/certificates", adminHandler.ListCertificates)
			admin.GET("/certificates/:code/ledger", adminHandler.GetLedger)
			admin.GET("/certificates/:code/manual-transactions", adminHandler.ListManualTransactions)
			admin.POST("/manual-transactions", adminHandler.CreateManualTransaction)
			admin.GET("/orders", adminHandler.ListOrders)
		}
	}

	return r
}
