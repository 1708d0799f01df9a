package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/audit-backend/internal/config"
	"github.com/ignatzorin/audit-backend/internal/http/handlers"
	"github.com/ignatzorin/audit-backend/internal/http/middleware"
	"github.com/ignatzorin/audit-backend/internal/models"
	"github.com/ignatzorin/audit-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	requestHandler *handlers.RequestHandler,
	settingsHandler *handlers.SettingsHandler,
	adminHandler *handlers.AdminHandler,
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
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
		protectedAuth.GET("/me", authHandler.Me)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/reviewer/apply", authHandler.ApplyForReviewer)
		protected.GET("/settings/fee-rate", settingsHandler.GetFeeRate)
	}

	// Все операции с заявками требуют аутентификации, включая пул
	// открытых заявок. Клейм дополнительно ограничен по частоте:
	// проигранный клейм не должен превращаться в плотный цикл повторов.
	claimRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	requests := api.Group("/requests")
	requests.Use(middleware.AuthMiddleware(tokenManager))
	{
		requests.GET("", requestHandler.OpenPool)
		requests.POST("", requestHandler.Create)
		requests.GET("/my", requestHandler.MyRequests)
		requests.GET("/assigned", requestHandler.MyAssignments)
		requests.GET("/:id", middleware.UUIDValidator("id"), requestHandler.Get)
		requests.POST("/:id/claim", middleware.UUIDValidator("id"), claimRateLimit, requestHandler.Claim)
		requests.POST("/:id/delivery", middleware.UUIDValidator("id"), requestHandler.Deliver)
		requests.POST("/:id/cancel", middleware.UUIDValidator("id"), requestHandler.Cancel)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings/fee-rate", adminHandler.UpdateFeeRate)
		admin.GET("/reviewer-applications", adminHandler.ListReviewerApplications)
		admin.POST("/reviewers/:id/approve", middleware.UUIDValidator("id"), adminHandler.ApproveReviewer)
		admin.POST("/reviewers/:id/reject", middleware.UUIDValidator("id"), adminHandler.RejectReviewer)
		admin.GET("/capture-retries", adminHandler.ListCaptureRetries)
		admin.POST("/capture-retries/:id/retry", middleware.UUIDValidator("id"), adminHandler.RetryCapture)
	}

	return r
}
