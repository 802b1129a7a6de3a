package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	Payment *handler.PaymentHandler
	Member  *handler.MemberHandler
	Tools   *handler.ToolsHandler
	Health  *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	handlers Handlers,
	merchants usecase.MerchantUseCase,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) {
	auth := []gin.HandlerFunc{
		middleware.APIKeyAuth(merchants, logger),
		middleware.RequestLog(merchants, timeProvider, logger),
	}
	withAuth := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, auth...), h)
	}

	router.GET("/health", handlers.Health.Health)

	// Payment routes
	paymentRoutes := router.Group("/payment")
	{
		// POST /payment/list
		paymentRoutes.POST("/list", withAuth(handlers.Payment.PaymentList)...)

		// POST /payment/:category with action create or update
		paymentRoutes.POST("/:category", withAuth(handlers.Payment.Webhook)...)

		// GET /payment/status/:token
		paymentRoutes.GET("/status/:token", handlers.Payment.StatusByToken)

		// GET /payment/:category/status/:transactionId
		paymentRoutes.GET("/:category/status/:transactionId", withAuth(handlers.Payment.Status)...)
	}

	// Public payment page and store checkout
	router.GET("/pay/:token", handlers.Payment.PaymentPage)
	router.POST("/store/:username/pay", handlers.Payment.StorePay)

	// Merchant dashboard routes
	memberRoutes := router.Group("/member", auth...)
	{
		memberRoutes.GET("/transactions", handlers.Member.Transactions)
		memberRoutes.POST("/transactions/:id/status", handlers.Member.UpdateStatus)
		memberRoutes.GET("/summary", handlers.Member.Summary)

		memberRoutes.GET("/settings", handlers.Member.Settings)
		memberRoutes.PUT("/settings/telegram", handlers.Member.UpdateTelegram)
		memberRoutes.PUT("/settings/store", handlers.Member.UpdateStore)
		memberRoutes.POST("/settings/apikey", handlers.Member.RotateAPIKey)

		memberRoutes.GET("/methods", handlers.Member.Methods)
		memberRoutes.POST("/methods", handlers.Member.AddMethod)
		memberRoutes.PUT("/methods/:id", handlers.Member.EditMethod)
		memberRoutes.POST("/methods/:id/toggle", handlers.Member.ToggleMethod)
		memberRoutes.DELETE("/methods/:id", handlers.Member.DeleteMethod)

		memberRoutes.GET("/api-requests", handlers.Member.APIRequests)
	}

	// Account lookup routes
	toolRoutes := router.Group("/tools", auth...)
	{
		toolRoutes.POST("/bank-list", handlers.Tools.BankList)
		toolRoutes.POST("/check-bank", handlers.Tools.CheckBank)
		toolRoutes.POST("/check-ewallet", handlers.Tools.CheckEwallet)
	}

	router.NoRoute(middleware.NoRoute())
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	// Apply middlewares in the correct order
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.CORS())
}
