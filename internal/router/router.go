package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/catalog-next/internal/cache"
	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/constants"
	adminhandlers "github.com/catalog-next/internal/http/handlers/admin"
	publichandlers "github.com/catalog-next/internal/http/handlers/public"
	handlershared "github.com/catalog-next/internal/http/handlers/shared"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/provider"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// SetupRouter builds the HTTP engine.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	handlershared.RegisterValidators()
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "catalog"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts, try again in %d seconds",
	}
	registerRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:register", redisPrefix),
		WindowSeconds: cfg.Security.RegisterRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RegisterRateLimit.MaxAttempts,
	}
	forgotRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:forgot_password", redisPrefix),
		WindowSeconds: cfg.Security.ForgotRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.ForgotRateLimit.MaxAttempts,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware(c.Metrics))
	r.Use(CORSMiddleware(cfg.CORS))

	authenticated := Authenticate(c.TokenService, c.UserRepo)
	verified := RequireEmailVerified()

	auth := r.Group("/auth")
	{
		auth.POST("/register", RateLimitMiddleware(redisClient, registerRule, KeyByIP), publicHandler.Register)
		auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
		auth.POST("/refresh", publicHandler.Refresh)
		auth.GET("/verify-email", publicHandler.VerifyEmail)
		auth.POST("/forgot-password", RateLimitMiddleware(redisClient, forgotRule, KeyByIPAndJSONField("email")), publicHandler.ForgotPassword)
		auth.POST("/reset-password", publicHandler.ResetPassword)

		auth.POST("/logout", authenticated, publicHandler.Logout)
		auth.GET("/profile", authenticated, EmailVerificationStatus(), publicHandler.GetProfile)
		auth.PATCH("/profile", authenticated, publicHandler.UpdateProfile)
		auth.POST("/resend-verification", authenticated, publicHandler.ResendVerification)
	}

	orders := r.Group("/orders")
	orders.Use(authenticated)
	{
		orders.POST("", verified, publicHandler.CreateOrder)
		orders.GET("", publicHandler.ListOrders)
		orders.GET("/all", AdminOnly(), adminHandler.ListAllOrders)
		orders.GET("/:id", publicHandler.GetOrder)
		orders.GET("/:id/items", publicHandler.ListOrderItems)
		orders.PATCH("/:id", publicHandler.UpdateOrder)
		orders.DELETE("/:id", publicHandler.DeleteOrder)
	}

	r.GET("/users/:user_id/orders", authenticated, RequireOwner("user_id"), publicHandler.ListUserOrders)

	catalogGate := RequirePermission(c.AuthzService, constants.PermissionCatalogWrite)
	catalogWrite := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{authenticated, verified, catalogGate, handler}
	}

	products := r.Group("/products")
	{
		products.GET("", publicHandler.ListProducts)
		products.GET("/:id", publicHandler.GetProduct)
		products.POST("", catalogWrite(adminHandler.CreateProduct)...)
		products.PUT("/:id", catalogWrite(adminHandler.UpdateProduct)...)
		products.DELETE("/:id", catalogWrite(adminHandler.DeleteProduct)...)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", publicHandler.ListCategories)
		categories.GET("/:id", publicHandler.GetCategory)
		categories.POST("", catalogWrite(adminHandler.CreateCategory)...)
		categories.PUT("/:id", catalogWrite(adminHandler.UpdateCategory)...)
		categories.DELETE("/:id", catalogWrite(adminHandler.DeleteCategory)...)
	}

	r.GET("/stats", authenticated, RequirePermission(c.AuthzService, constants.PermissionStatsRead), adminHandler.GetStats)

	admin := r.Group("/admin")
	admin.Use(authenticated)
	{
		admin.GET("/users", RequirePermission(c.AuthzService, constants.PermissionUsersRead), adminHandler.ListUsers)
		admin.PATCH("/orders/:id/status", RequirePermission(c.AuthzService, constants.PermissionOrdersReadAll), adminHandler.UpdateOrderStatus)
		admin.GET("/login-logs", RequirePermission(c.AuthzService, constants.PermissionUsersRead), adminHandler.ListUserLoginLogs)
	}

	authzAdmin := admin.Group("/authz")
	authzAdmin.Use(RequirePermission(c.AuthzService, constants.PermissionAuthzManage))
	{
		authzAdmin.GET("/roles", adminHandler.ListAuthzRoles)
		authzAdmin.GET("/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
		authzAdmin.POST("/roles/:role/policies", adminHandler.GrantAuthzPolicy)
		authzAdmin.DELETE("/roles/:role/policies", adminHandler.RevokeAuthzPolicy)
		authzAdmin.POST("/reload", adminHandler.ReloadAuthzPolicy)
		authzAdmin.GET("/audit-logs", adminHandler.ListAuthzAuditLogs)
	}

	uploads := r.Group("/upload")
	uploads.Use(authenticated, verified)
	{
		uploads.POST("", publicHandler.UploadFile)
		uploads.GET("", publicHandler.ListUploads)
		uploads.GET("/:filename", publicHandler.GetUpload)
		uploads.DELETE("/:filename", publicHandler.DeleteUpload)
	}

	r.GET("/captcha", publicHandler.GetImageCaptcha)

	r.GET("/health", healthHandler)
	if cfg.Metrics.Enabled && c.Metrics != nil {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.Metrics.Handler()))
	}

	return r
}

func healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	redisStatus := "disabled"
	if cache.Enabled() {
		redisStatus = "ok"
		if err := cache.Ping(ctx); err != nil {
			logger.Warnw("health_redis_unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": redisStatus})
}
