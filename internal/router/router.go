package router

import (
	"github.com/jessmaeeGit/kimklesordering-api/internal/http/handlers/admin"
	"github.com/jessmaeeGit/kimklesordering-api/internal/http/handlers/notify"
	"github.com/jessmaeeGit/kimklesordering-api/internal/http/handlers/public"
	"github.com/jessmaeeGit/kimklesordering-api/internal/logger"
	"github.com/jessmaeeGit/kimklesordering-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(container *provider.Container) *gin.Engine {
	cfg := container.Config
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	publicHandler := public.New(container)
	adminHandler := admin.New(container)
	notifyHandler := notify.New(cfg.Notify, container.NotificationService)

	// 通知转发保留原有前端路径，不进 /api/v1
	r.POST("/api/notify-order", notifyHandler.NotifyOrder)
	r.POST("/api/notify-order-completion", notifyHandler.NotifyOrderCompletion)
	r.POST("/api/test-notification", notifyHandler.TestNotification)
	r.GET("/health", notifyHandler.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/products", publicHandler.GetProducts)
		api.GET("/products/:slug", publicHandler.GetProductBySlug)
		api.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByOrderNo)

		api.POST("/auth/register", publicHandler.UserRegister)
		api.POST("/auth/login", publicHandler.UserLogin)

		// 购物车与结账同时支持登录用户和游客会话
		session := api.Group("")
		session.Use(UserJWTOptionalMiddleware(cfg.UserJWT.SecretKey))
		{
			session.GET("/cart", publicHandler.GetCart)
			session.POST("/cart/items", publicHandler.AddCartItem)
			session.POST("/cart/items/:product_id/remove", publicHandler.RemoveCartItem)
			session.DELETE("/cart/items/:product_id", publicHandler.DeleteCartItem)
			session.POST("/cart/promo", publicHandler.ApplyPromoCode)
			session.DELETE("/cart", publicHandler.ClearCart)

			session.GET("/checkout/config", publicHandler.GetCheckoutConfig)
			session.POST("/checkout/payment-order", publicHandler.CreatePaymentOrder)
			session.POST("/checkout/payment-approved", publicHandler.PaymentApproved)
			session.POST("/checkout/place-order", publicHandler.PlaceOrder)
		}

		me := api.Group("/me")
		me.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, container.UserRepo))
		{
			me.GET("", publicHandler.GetCurrentUser)
			me.GET("/orders", publicHandler.ListMyOrders)
			me.GET("/orders/:order_no", publicHandler.GetMyOrder)
		}

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/login", adminHandler.AdminLogin)

			authed := adminGroup.Group("")
			authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, container.AdminRepo))
			{
				authed.GET("/orders", adminHandler.AdminListOrders)
				authed.GET("/orders/:order_no", adminHandler.AdminGetOrder)
				authed.POST("/orders/:order_no/approve", adminHandler.AdminApproveOrder)
				authed.POST("/orders/:order_no/complete", adminHandler.AdminCompleteOrder)
				authed.POST("/orders/:order_no/reject", adminHandler.AdminRejectOrder)
				authed.GET("/users", adminHandler.GetAdminUsers)
			}
		}
	}

	return r
}
