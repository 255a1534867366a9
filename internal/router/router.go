package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gunantos/miniapp-telegram/internal/handler"
	"github.com/gunantos/miniapp-telegram/internal/middleware"
	"github.com/gunantos/miniapp-telegram/internal/model"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	registerValidations()

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminCheck := &middleware.StaticTokenCheck{Token: h.Config.AdminToken}

	// ==================== 公开接口 ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.GET("/videos", h.ListVideos)
		api.GET("/videos/:id", h.GetVideo)
		api.GET("/videos/:id/related", h.RelatedVideos)
		api.GET("/videos/:id/stream", h.StreamVideo)
		api.GET("/videos/:id/likes", h.GetLikes)
		api.GET("/videos/:id/comments", h.ListComments)

		api.POST("/auth/telegram", h.TelegramAuth)
	}

	// ==================== 登录后接口 ====================
	user := r.Group("/api")
	user.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		user.GET("/user/me", h.Me)

		user.POST("/videos/:id/likes", h.ToggleLike)
		user.POST("/videos/:id/comments", h.CreateComment)

		user.GET("/user/history", h.GetHistory)
		user.POST("/user/history", h.SaveHistory)
		user.DELETE("/user/history", h.ClearHistory)
		user.DELETE("/user/history/:id", h.DeleteHistory)

		user.GET("/user/preferences", h.GetPreferences)
		user.PUT("/user/preferences", h.UpdatePreferences)
	}

	// ==================== 管理后台 ====================
	r.POST("/api/admin/login", h.AdminLogin)

	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireAdmin(adminCheck))
	{
		admin.POST("/scrape", h.RunImport)
		admin.GET("/scrape", h.ScrapeStats)
		admin.POST("/sync-telegram", h.SyncTelegram)
		admin.GET("/sync-telegram", h.SyncStats)

		admin.GET("/videos", h.AdminListVideos)
		admin.POST("/videos", h.AdminCreateVideo)
		admin.PUT("/videos/:id", h.AdminUpdateVideo)
		admin.DELETE("/videos/:id", h.AdminDeleteVideo)

		admin.GET("/videos/:id/parts", h.AdminListParts)
		admin.PUT("/video-parts/:id", h.AdminUpdatePart)
	}
}

// registerValidations 注册自定义校验规则
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("videocategory", func(fl validator.FieldLevel) bool {
			return model.IsValidCategory(fl.Field().String())
		})
	}
}
