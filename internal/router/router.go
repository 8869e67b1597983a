package router

import (
	"fmt"
	"strings"

	"github.com/scanpesa/internal/cache"
	"github.com/scanpesa/internal/config"
	adminhandlers "github.com/scanpesa/internal/http/handlers/admin"
	publichandlers "github.com/scanpesa/internal/http/handlers/public"
	"github.com/scanpesa/internal/logger"
	"github.com/scanpesa/internal/metrics"
	"github.com/scanpesa/internal/payment/mpesa"
	"github.com/scanpesa/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the HTTP engine
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sp"
	}
	redisClient := cache.Client()
	feedbackRule := RateLimitRule{
		Scope:         "feedback",
		Prefix:        fmt.Sprintf("%s:rate:feedback", redisPrefix),
		WindowSeconds: cfg.Security.FeedbackRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.FeedbackRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.FeedbackRateLimit.BlockSeconds,
		MessageKey:    "error.feedback_too_many",
	}
	verifyRule := feedbackRule
	verifyRule.Scope = "qr_verify"
	verifyRule.Prefix = fmt.Sprintf("%s:rate:qr_verify", redisPrefix)
	verifyRule.MessageKey = "error.rate_limited"
	adminLoginRule := RateLimitRule{
		Scope:         "admin_login",
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		metrics.Register()
		r.Use(metrics.GinMiddleware())
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, metrics.Handler())
	}

	// gateway callbacks live at fixed paths registered with Daraja
	r.POST(mpesa.ResultPath, publicHandler.MpesaResult)
	r.POST(mpesa.TimeoutPath, publicHandler.MpesaTimeout)
	r.POST(mpesa.StatusResultPath, publicHandler.MpesaStatusResult)
	r.POST(mpesa.StatusTimeoutPath, publicHandler.MpesaStatusTimeout)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/feedback", RateLimitMiddleware(redisClient, feedbackRule, KeyByIPAndJSONField("customer_phone")), publicHandler.SubmitFeedback)
		apiV1.POST("/qr/verify", RateLimitMiddleware(redisClient, verifyRule, KeyByIP), publicHandler.VerifyQR)

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.Login)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService))
			{
				authorized.GET("/profile", adminHandler.GetProfile)

				// QR ledger
				authorized.POST("/qr-codes/generate", adminHandler.GenerateQRCodes)
				authorized.POST("/qr-codes/preview", adminHandler.PreviewQRCodes)
				authorized.GET("/qr-codes", adminHandler.ListQRCodes)
				authorized.GET("/qr-codes/stats", adminHandler.GetQRStats)
				authorized.GET("/qr-codes/export", adminHandler.ExportQRCodes)
				authorized.POST("/qr-codes/bulk-delete", adminHandler.BulkDeleteQRCodes)
				authorized.GET("/qr-codes/:id", adminHandler.GetQRCode)
				authorized.GET("/qr-codes/:id/image", adminHandler.GetQRCodeImage)

				// feedback
				authorized.GET("/feedback", adminHandler.ListFeedback)
				authorized.GET("/feedback/:id", adminHandler.GetFeedback)

				// rewards
				authorized.GET("/rewards", adminHandler.ListRewards)
				authorized.GET("/rewards/:id", adminHandler.GetReward)
				authorized.POST("/rewards/dispatch", adminHandler.DispatchRewards)
				authorized.POST("/rewards/dispatch-async", adminHandler.DispatchRewardsAsync)
				authorized.POST("/rewards/:id/query-status", adminHandler.QueryRewardStatus)

				authorized.GET("/analytics", adminHandler.GetAnalytics)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
