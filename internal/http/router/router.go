package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/http/handlers"
	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	itemHandler *handlers.ItemHandler,
	claimHandler *handlers.ClaimHandler,
	adminHandler *handlers.AdminHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	// Публичные маршруты
	api.GET("/items", itemHandler.ListItems)
	api.GET("/items/:id", middleware.UUIDValidator("id"), itemHandler.GetItem)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/items", itemHandler.ReportItem)
		protected.GET("/items/my", itemHandler.ListMyItems)

		protected.POST("/claims", claimHandler.SubmitClaim)
		protected.GET("/claims/my", claimHandler.ListMyClaims)
		protected.GET("/claims/item/:itemId", middleware.UUIDValidator("itemId"), claimHandler.ListClaimsByItem)
		protected.PUT("/claims/:id/status", middleware.UUIDValidator("id"), claimHandler.UpdateClaimStatus)
		protected.DELETE("/claims/:id", middleware.UUIDValidator("id"), claimHandler.DeleteClaim)

		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)

		// Админские маршруты. Проверка роли живёт в сервисном слое,
		// поэтому здесь достаточно аутентификации.
		protected.PUT("/admin/claims/:id/dispute", middleware.UUIDValidator("id"), adminHandler.DisputeClaim)
	}

	return r
}
