package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/roastblame-backend/internal/config"
	"github.com/ignatzorin/roastblame-backend/internal/http/handlers"
	"github.com/ignatzorin/roastblame-backend/internal/http/middleware"
	"github.com/ignatzorin/roastblame-backend/internal/models"
	"github.com/ignatzorin/roastblame-backend/internal/service"
	"github.com/ignatzorin/roastblame-backend/internal/storage"
)

// MediaURLPrefix - префикс, под которым раздаются загруженные файлы.
const MediaURLPrefix = "/media"

func SetupRouter(
	cfg *config.Config,
	tokenManager *service.TokenManager,
	rateStore limiter.Store,
	media *storage.MediaStorage,
	authHandler *handlers.AuthHandler,
	postHandler *handlers.PostHandler,
	reportHandler *handlers.ReportHandler,
	adminHandler *handlers.AdminHandler,
	cryptoHandler *handlers.CryptoHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	seedHandler *handlers.SeedHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS(MediaURLPrefix, http.Dir(media.Root()))

	api := r.Group("/api")

	if seedHandler != nil && cfg.Env == "development" {
		api.POST("/seed", seedHandler.Seed)
	}
	requireAuth := middleware.AuthMiddleware(tokenManager)
	optionalAuth := middleware.OptionalAuth(tokenManager)
	rateLimit := middleware.RateLimitMiddleware(rateStore, cfg.RateLimitLimit, cfg.RateLimitPeriod)
	postID := middleware.IDValidator("id", models.PrefixPost)
	reportID := middleware.IDValidator("id", models.PrefixReport)
	userID := middleware.IDValidator("id", models.PrefixUser, models.PrefixAnonymous, models.PrefixAdmin)

	authGroup := api.Group("/auth")
	authGroup.Use(rateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/anonymous", authHandler.Anonymous)
		authGroup.POST("/admin/login", authHandler.AdminLogin)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
		authGroup.GET("/me", requireAuth, authHandler.Me)
	}

	// Публичные маршруты
	api.GET("/posts", optionalAuth, postHandler.ListPosts)
	api.GET("/posts/:id", optionalAuth, postID, postHandler.GetPost)
	api.GET("/settings", adminHandler.GetSettings)
	api.GET("/nfts", cryptoHandler.ListNFTs)
	api.GET("/ws", requireAuth, wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(requireAuth)
	{
		protected.POST("/posts", postHandler.CreatePost)
		// Перечитывание ленты берёт блокировку на запись и читает всё хранилище
		protected.POST("/posts/reload", rateLimit, postHandler.Reload)
		protected.PUT("/posts/:id/reactions", postID, postHandler.UpdateReaction)
		protected.POST("/posts/:id/reports", postID, reportHandler.CreateReport)

		protected.GET("/wallet", cryptoHandler.GetWallet)
		protected.POST("/wallet", cryptoHandler.ConnectWallet)
		protected.DELETE("/wallet", cryptoHandler.DisconnectWallet)

		protected.GET("/crypto/transactions", cryptoHandler.ListTransactions)
		protected.POST("/crypto/transactions", cryptoHandler.RecordTransaction)
		protected.POST("/crypto/tips", cryptoHandler.SendTip)
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.AdminOnly())
	{
		admin.GET("/overview", adminHandler.Overview)
		admin.DELETE("/posts/:id", postID, adminHandler.DeletePost)

		admin.GET("/reports", reportHandler.ListReports)
		admin.GET("/reports/stats", reportHandler.Stats)
		admin.PUT("/reports/:id", reportID, reportHandler.ReviewReport)

		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/ban", userID, adminHandler.BanUser)
		admin.POST("/users/:id/unban", userID, adminHandler.UnbanUser)

		admin.GET("/logs", adminHandler.ListLogs)
		admin.PUT("/settings", adminHandler.UpdateSettings)
		admin.POST("/nfts", cryptoHandler.MintNFT)
	}

	return r
}
