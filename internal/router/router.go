package router

import (
	"fmt"
	"strings"

	"github.com/grabhealth-next/internal/cache"
	"github.com/grabhealth-next/internal/config"
	adminhandlers "github.com/grabhealth-next/internal/http/handlers/admin"
	publichandlers "github.com/grabhealth-next/internal/http/handlers/public"
	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "gh"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
			public.GET("/products/slug/:slug", publicHandler.GetProductBySlug)
			public.GET("/partners", publicHandler.GetPartners)
			public.GET("/partners/:id", publicHandler.GetPartner)
			public.GET("/membership-tiers", publicHandler.GetMembershipTiers)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetUserProfile)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)

			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.AddCartItem)
			user.PUT("/cart/items/:id", publicHandler.UpdateCartItem)
			user.DELETE("/cart/items/:id", publicHandler.DeleteCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)

			user.POST("/orders", publicHandler.CreateOrder)
			user.POST("/orders/checkout", publicHandler.CheckoutCart)
			user.GET("/orders", publicHandler.ListOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/orders/by-order-no/:order_no", publicHandler.GetOrderByOrderNo)
			user.POST("/orders/:id/cancel", publicHandler.CancelOrder)

			user.GET("/referral/code", publicHandler.GetReferralCode)
			user.POST("/referral/apply", publicHandler.ApplyReferralCode)
			user.GET("/referral/upline", publicHandler.GetUpline)
			user.GET("/referral/downline", publicHandler.GetDownline)

			user.GET("/membership/status", publicHandler.GetMembershipStatus)
			user.GET("/commissions/summary", publicHandler.GetCommissionSummary)
			user.GET("/commissions", publicHandler.ListCommissions)

			user.POST("/bookings", publicHandler.CreateBooking)
			user.GET("/bookings", publicHandler.ListBookings)
			user.GET("/bookings/:id", publicHandler.GetBooking)
			user.POST("/bookings/:id/cancel", publicHandler.CancelBooking)
		}

		// 后台接口（需鉴权 + RBAC）
		admin := apiV1.Group("/admin")
		admin.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo), RBACMiddleware(c.AuthzService))
		{
			// 仪表盘
			admin.GET("/dashboard", adminHandler.GetDashboardOverview)

			// 用户管理
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			admin.GET("/users/:id/commission-summary", adminHandler.GetUserCommissionSummary)
			admin.PATCH("/users/status", adminHandler.BatchUpdateUserStatus)

			// 订单管理
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
			admin.PATCH("/orders/:id/payment-status", adminHandler.UpdateOrderPaymentStatus)

			// 佣金管理
			admin.GET("/commissions", adminHandler.ListCommissions)
			admin.POST("/commissions/calculate/:order_id", adminHandler.CalculateCommissions)
			admin.POST("/commissions/approve", adminHandler.ApproveCommissions)
			admin.POST("/commissions/mark-paid", adminHandler.MarkCommissionsPaid)

			// 佣金模板管理
			admin.GET("/commission-templates", adminHandler.ListCommissionTemplates)
			admin.GET("/commission-templates/:id", adminHandler.GetCommissionTemplate)
			admin.POST("/commission-templates", adminHandler.CreateCommissionTemplate)
			admin.PUT("/commission-templates/:id", adminHandler.UpdateCommissionTemplate)
			admin.DELETE("/commission-templates/:id", adminHandler.DeleteCommissionTemplate)

			// 分类管理
			admin.GET("/categories", adminHandler.ListCategories)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PUT("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			// 商品管理
			admin.GET("/products", adminHandler.ListProducts)
			admin.GET("/products/:id", adminHandler.GetProduct)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)

			// 会员等级管理
			admin.GET("/membership-tiers", adminHandler.ListMembershipTiers)
			admin.POST("/membership-tiers", adminHandler.CreateMembershipTier)
			admin.PUT("/membership-tiers/:id", adminHandler.UpdateMembershipTier)
			admin.DELETE("/membership-tiers/:id", adminHandler.DeleteMembershipTier)

			// 合作门店管理
			admin.GET("/partners", adminHandler.ListPartners)
			admin.GET("/partners/:id", adminHandler.GetPartner)
			admin.POST("/partners", adminHandler.CreatePartner)
			admin.PUT("/partners/:id", adminHandler.UpdatePartner)
			admin.DELETE("/partners/:id", adminHandler.DeletePartner)

			// 预约管理
			admin.GET("/bookings", adminHandler.ListBookings)
			admin.GET("/bookings/:id", adminHandler.GetBooking)
			admin.POST("/bookings/:id/confirm", adminHandler.ConfirmBooking)
			admin.POST("/bookings/:id/complete", adminHandler.CompleteBooking)
			admin.POST("/bookings/:id/cancel", adminHandler.CancelBooking)

			// 设置管理
			admin.GET("/settings/captcha", adminHandler.GetCaptchaSettings)
			admin.PUT("/settings/captcha", adminHandler.UpdateCaptchaSettings)
			admin.GET("/settings/:key", adminHandler.GetSetting)
			admin.PUT("/settings/:key", adminHandler.UpdateSetting)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
