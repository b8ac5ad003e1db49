package router

import (
	"github.com/storefront-next/internal/config"
	uihandlers "github.com/storefront-next/internal/http/handlers/ui"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	uiHandler := uihandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 会话与认证
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", uiHandler.Login)
			auth.POST("/register", uiHandler.Register)
			auth.POST("/logout", uiHandler.Logout)
			auth.POST("/refresh", uiHandler.RefreshSession)
			auth.GET("/session", uiHandler.GetSession)
			auth.GET("/me", uiHandler.GetCurrentUser)
		}

		// 购物车
		cart := apiV1.Group("/cart")
		{
			cart.GET("", uiHandler.GetCart)
			cart.GET("/count", uiHandler.GetCartCount)
			cart.POST("/items", uiHandler.AddCartItem)
			cart.PATCH("/items/:product_id", uiHandler.UpdateCartItem)
			cart.DELETE("/items/:product_id", uiHandler.RemoveCartItem)
			cart.DELETE("", uiHandler.ClearCart)
			cart.POST("/refresh", uiHandler.RefreshCart)
		}

		// 收藏
		favorites := apiV1.Group("/favorites")
		{
			favorites.GET("", uiHandler.GetFavorites)
			favorites.GET("/count", uiHandler.GetFavoriteCount)
			favorites.GET("/:product_id", uiHandler.GetFavoriteStatus)
			favorites.POST("", uiHandler.AddFavorite)
			favorites.DELETE("/:product_id", uiHandler.RemoveFavorite)
			favorites.POST("/refresh", uiHandler.RefreshFavorites)
		}

		// 订单（登录后才可访问）
		orders := apiV1.Group("/orders")
		orders.Use(AuthRequiredMiddleware(c.AuthService.IsAuthenticated))
		{
			orders.GET("", uiHandler.GetOrders)
			orders.GET("/:order_id", uiHandler.GetOrder)
		}

		// 通知中心
		notifications := apiV1.Group("/notifications")
		{
			notifications.GET("", uiHandler.GetNotifications)
			notifications.DELETE("", uiHandler.ClearNotifications)
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	return r
}
