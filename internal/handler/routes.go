package handler

import (
	"fmt"

	"qrportal/internal/middleware"
	auth "qrportal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Portal *PortalHandler
	QRCode *QRCodeHandler
	Admin  *AdminHandler
	Auth   *AuthHandler
}

// NewEngine 创建 gin 引擎；trustedProxies 为空时不信任任何代理头，ClientIP 取连接地址
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("无效的 trusted_proxies 配置: %w", err)
	}
	return router, nil
}

// RegisterRoutes 注册扫码入口、认证、所有者与管理员接口
func RegisterRoutes(router gin.IRouter, h Handlers, tokenManager *auth.TokenManager) {
	router.GET("/health", HealthCheck)

	portal := router.Group("")
	portal.Use(middleware.OptionalAuth(tokenManager))
	{
		portal.GET("/", h.Portal.Index)
		portal.GET("/r/:alias", h.Portal.Redirect)
		portal.GET("/view", h.Portal.View)
		portal.GET("/qr/:id/image", h.Portal.Image)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(tokenManager))
	{
		api.GET("/me", h.Auth.GetCurrentUser)
		api.POST("/qrcodes", h.QRCode.CreateQRCode)
		api.GET("/qrcodes", h.QRCode.ListQRCodes)
		api.GET("/qrcodes/:id", h.QRCode.GetQRCode)
		api.PUT("/qrcodes/:id", h.QRCode.UpdateQRCode)
		api.DELETE("/qrcodes/:id", h.QRCode.DeleteQRCode)
		api.PUT("/qrcodes/:id/toggle", h.QRCode.ToggleQRCode)
		api.GET("/qrcodes/:id/stats", h.QRCode.GetQRStats)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.PUT("/qrcodes/:id/status", h.Admin.SetQRStatus)
		admin.DELETE("/qrcodes/:id", h.Admin.DeleteQRCode)
		admin.PUT("/users/:id/pause", h.Admin.PauseUser)
		admin.GET("/stats", h.Admin.GetStats)
	}
}
