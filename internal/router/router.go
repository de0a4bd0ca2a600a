package router

import (
	"zilconnect/config"
	"zilconnect/internal/cache"
	"zilconnect/internal/handler"
	"zilconnect/internal/metrics"
	"zilconnect/internal/middleware"
	"zilconnect/internal/repository"
	"zilconnect/internal/service"
	"zilconnect/internal/ws"
	"zilconnect/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, log *zap.Logger, c *cache.Cache, m *metrics.Metrics, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(&cfg.RateLimit), &cfg.JWT))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	businessRepo := repository.NewBusinessRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	productRepo := repository.NewProductRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	offerRepo := repository.NewOfferRepository(db)

	hub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, m, log)
	connSvc := service.NewConnectionService(connRepo, businessRepo, userRepo, notifSvc, c, m, log)
	messageSvc := service.NewMessageService(messageRepo, connRepo, businessRepo, userRepo, notifSvc, c, m, log)
	opportunitySvc := service.NewOpportunityService(opportunityRepo, notifSvc, log)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, productRepo, commissionRepo, notifSvc, m, log)
	offerSvc := service.NewOfferService(offerRepo, m, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	businessHandler := handler.NewBusinessHandler(businessRepo)
	connectionHandler := handler.NewConnectionHandler(connSvc)
	messageHandler := handler.NewMessageHandler(messageSvc, hub)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, log)
	opportunityHandler := handler.NewOpportunityHandler(opportunityRepo, businessRepo, opportunitySvc)
	productHandler := handler.NewProductHandler(productRepo)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, businessRepo, commissionRepo)
	offerHandler := handler.NewOfferHandler(offerRepo, businessRepo, offerSvc)
	uploadHandler := handler.NewUploadHandler(cloud, businessRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		businesses := api.Group("/businesses")
		{
			businesses.GET("", businessHandler.List)
			businesses.GET("/:id", businessHandler.Get)
			businesses.PUT("/me", authMw, businessHandler.Upsert)
			businesses.GET("/me", authMw, businessHandler.GetMine)
			businesses.POST("/me/logo", authMw, uploadHandler.UploadLogo)
		}

		connections := api.Group("/connections")
		connections.Use(authMw)
		{
			connections.POST("", connectionHandler.SendRequest)
			connections.GET("", connectionHandler.ListConnections)
			connections.GET("/pending", connectionHandler.ListPending)
			connections.GET("/sent", connectionHandler.ListSent)
			connections.GET("/status/:user_id", connectionHandler.Status)
			connections.POST("/:id/accept", connectionHandler.Accept)
			connections.POST("/:id/reject", connectionHandler.Reject)
			connections.POST("/:id/block", connectionHandler.Block)
			connections.DELETE("/:id", connectionHandler.Remove)
		}

		messages := api.Group("/messages")
		messages.Use(authMw)
		{
			messages.POST("", messageHandler.Send)
			messages.GET("/conversations", messageHandler.Conversations)
			messages.GET("/connection/:id", messageHandler.List)
			messages.PUT("/connection/:id/read", messageHandler.MarkAllRead)
			messages.GET("/search", messageHandler.Search)
			messages.GET("/unread-count", messageHandler.UnreadTotal)
			messages.DELETE("/:id", messageHandler.Delete)
		}

		notifications := api.Group("/notifications")
		notifications.Use(authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		opportunities := api.Group("/opportunities")
		{
			opportunities.GET("", opportunityHandler.List)
			opportunities.GET("/:id", opportunityHandler.Get)
			opportunities.POST("", authMw, opportunityHandler.Create)
			opportunities.PATCH("/:id", authMw, opportunityHandler.Update)
			opportunities.DELETE("/:id", authMw, opportunityHandler.Delete)
			opportunities.POST("/:id/apply", authMw, opportunityHandler.Apply)
			opportunities.GET("/:id/applications", authMw, opportunityHandler.Applications)
		}
		api.GET("/applications/mine", authMw, opportunityHandler.MyApplications)
		api.PATCH("/applications/:id/status", authMw, opportunityHandler.UpdateApplicationStatus)

		products := api.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.POST("", authMw, productHandler.Create)
		}

		enrollments := api.Group("/enrollments")
		enrollments.Use(authMw)
		{
			enrollments.GET("/check", enrollmentHandler.CheckExisting)
			enrollments.POST("", enrollmentHandler.Create)
			enrollments.PATCH("/:id/status", enrollmentHandler.UpdateStatus)
			enrollments.GET("/mine", enrollmentHandler.ListMine)
		}
		api.GET("/commissions", authMw, enrollmentHandler.Commissions)
		api.GET("/commissions/summary", authMw, enrollmentHandler.CommissionSummary)

		offers := api.Group("/offers")
		{
			offers.GET("", offerHandler.List)
			offers.GET("/:id", offerHandler.Get)
			offers.POST("", authMw, offerHandler.Create)
			offers.PATCH("/:id", authMw, offerHandler.Update)
			offers.DELETE("/:id", authMw, offerHandler.Delete)
			offers.POST("/:id/claim", authMw, offerHandler.Claim)
		}
		api.GET("/claims/mine", authMw, offerHandler.MyClaims)
		api.GET("/claims/:code/verify", authMw, offerHandler.Verify)
		api.POST("/claims/:code/redeem", authMw, offerHandler.Redeem)

		api.POST("/uploads/offer-image", authMw, uploadHandler.UploadOfferImage)
	}

	r.GET("/ws/messages", handler.UpgradeMessageWS(&cfg.JWT, hub, connRepo, messageSvc))
	r.GET("/metrics", m.Handler())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
	})

	return r
}
