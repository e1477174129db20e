package api

import (
	"github.com/gin-gonic/gin"

	"github.com/chatdeck/chatdeck/internal/api/admin"
	"github.com/chatdeck/chatdeck/internal/api/middleware"
	"github.com/chatdeck/chatdeck/internal/api/widget"
	"github.com/chatdeck/chatdeck/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	chatService *service.ChatService,
	feedbackService *service.FeedbackService,
	audioService *service.AudioService,
	uploadService *service.UploadService,
	adminService *service.AdminService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware (the widget is embedded cross-origin)
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Widget API (public)
	widgetHandler := widget.NewHandler(chatService, feedbackService, audioService, uploadService)
	widgetGroup := r.Group("/api/widget")
	widgetHandler.RegisterRoutes(widgetGroup)

	// Admin API (requires API key); nil when nothing is persisted
	if adminService != nil {
		adminHandler := admin.NewHandler(adminService)
		adminGroup := r.Group("/api/admin")
		adminGroup.Use(middleware.Auth(cfg.APIKey))
		adminHandler.RegisterRoutes(adminGroup)
	}

	return r
}
