package router

import (
	"time"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/handler"
	"github.com/sanjay-gangishetty/VideoGen/internal/middleware"
	"github.com/sanjay-gangishetty/VideoGen/internal/repository"
	"github.com/sanjay-gangishetty/VideoGen/internal/service"
	"github.com/sanjay-gangishetty/VideoGen/pkg/httpclient"
	"github.com/sanjay-gangishetty/VideoGen/pkg/payment"
	"github.com/sanjay-gangishetty/VideoGen/pkg/videogen"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	// Provider factories: configuration is captured in the closures here,
	// so every lookup after startup returns a ready provider.
	retry := httpclient.Config{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		Multiplier:   cfg.Retry.Multiplier,
		MaxDelay:     cfg.Retry.MaxDelay,
	}
	videoProviders := videogen.NewFactory()
	videoProviders.Register("heygen", func() videogen.Provider {
		return videogen.NewHeyGen(videogen.Config{
			APIKey:  cfg.HeyGen.APIKey,
			BaseURL: cfg.HeyGen.BaseURL,
			Timeout: cfg.HeyGen.Timeout,
			Retry:   retry,
		})
	})
	videoProviders.Register("veo3", func() videogen.Provider {
		return videogen.NewVeo3(videogen.Config{
			APIKey:  cfg.Veo3.APIKey,
			BaseURL: cfg.Veo3.BaseURL,
			Timeout: cfg.Veo3.Timeout,
			Retry:   retry,
		})
	})
	videoProviders.Register("kie", func() videogen.Provider {
		return videogen.NewKie(videogen.Config{
			APIKey:  cfg.Kie.APIKey,
			BaseURL: cfg.Kie.BaseURL,
			Timeout: cfg.Kie.Timeout,
			Retry:   retry,
		})
	})

	paymentProviders := payment.NewFactory()
	paymentProviders.Register("stripe", func() payment.Provider {
		return payment.NewStripe(payment.StripeConfig{
			APIKey:        cfg.Stripe.APIKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		})
	})

	// Services
	authSvc := service.NewAuthService(cfg, userRepo, walletRepo)
	settlementSvc := service.NewSettlementService(cfg, paymentRepo, paymentProviders)
	creditsSvc := service.NewCreditsService(cfg, walletRepo)
	videoSvc := service.NewVideoService(cfg, videoRepo, walletRepo, videoProviders)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	paymentHandler := handler.NewPaymentHandler(settlementSvc)
	webhookHandler := handler.NewWebhookHandler(cfg, settlementSvc, paymentProviders)
	creditsHandler := handler.NewCreditsHandler(creditsSvc)
	videoHandler := handler.NewVideoHandler(videoSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		// Gateway webhook: signature-verified, never behind JWT auth.
		api.POST("/payment/webhook", webhookHandler.Handle)

		paymentGroup := api.Group("/payment")
		paymentGroup.Use(authMw)
		{
			paymentGroup.POST("/checkout", paymentHandler.Checkout)
			paymentGroup.GET("/success", paymentHandler.Success)
			paymentGroup.GET("/cancel", paymentHandler.Cancel)
			paymentGroup.GET("/history", paymentHandler.History)
		}

		credits := api.Group("/credits")
		credits.Use(authMw)
		{
			credits.GET("", creditsHandler.Balance)
			credits.POST("/deduct", creditsHandler.Deduct)
			credits.POST("/add", creditsHandler.Add)
			credits.POST("/reset", creditsHandler.Reset)
			credits.GET("/ledger", creditsHandler.Ledger)
		}

		videos := api.Group("/videos")
		videos.Use(authMw)
		{
			videos.POST("", videoHandler.Create)
			videos.GET("", videoHandler.List)
			videos.GET("/:id", videoHandler.Get)
			videos.POST("/:id/refresh", videoHandler.Refresh)
			videos.GET("/:id/download", videoHandler.Download)
			videos.POST("/:id/cancel", videoHandler.Cancel)
			videos.DELETE("/:id", videoHandler.Delete)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
