package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bioAffiliate/app/echo-server/router"
	"bioAffiliate/business/analytics"
	"bioAffiliate/business/attribution"
	"bioAffiliate/business/campaign"
	"bioAffiliate/business/click"
	"bioAffiliate/business/link"
	"bioAffiliate/business/partner"
	"bioAffiliate/business/payout"
	"bioAffiliate/business/product"
	userService "bioAffiliate/business/user"
	"bioAffiliate/internal/middleware"
	"bioAffiliate/internal/repository/notification"
	psqlRepo "bioAffiliate/internal/repository/postgres"
	redisRepo "bioAffiliate/internal/repository/redis"
	"bioAffiliate/internal/rest"
	"bioAffiliate/pkg/config"
	"bioAffiliate/pkg/database"
	redisdb "bioAffiliate/pkg/database/redis"
	"bioAffiliate/pkg/logger"
	"bioAffiliate/pkg/metrics"
	"bioAffiliate/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting BioTools Affiliate API", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer func() {
		_ = redisdb.CloseRedisClient(redisClient)
	}()

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	postbackLimiter := redisRepo.NewRateLimiter(redisClient, cfg.Postback.RateLimitPerMin, time.Minute)

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	partnerRepo := psqlRepo.NewPartnerRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	linkRepo := psqlRepo.NewLinkRepository(db)
	clickRepo := psqlRepo.NewClickRepository(db)
	conversionRepo := psqlRepo.NewConversionRepository(db)
	payoutRepo := psqlRepo.NewPayoutRepository(db)
	campaignRepo := psqlRepo.NewCampaignRepository(db)
	postbackLogRepo := psqlRepo.NewPostbackLogRepository(db)
	analyticsRepo := psqlRepo.NewAnalyticsRepository(db)

	// Init service
	usersService := userService.NewUserService(userRepo)
	partnerService := partner.NewPartnerService(partnerRepo, conversionRepo)
	productService := product.NewProductService(productRepo, conversionRepo)
	linkService := link.NewLinkService(linkRepo, productRepo, conversionRepo, cfg.App.BaseURL)
	clickService := click.NewClickService(clickRepo)
	attributionService := attribution.NewAttributionService(conversionRepo, clickRepo, partnerRepo, productRepo)
	payoutService := payout.NewPayoutService(payoutRepo, conversionRepo, partnerRepo, mailjetEmail)
	campaignService := campaign.NewCampaignService(campaignRepo)
	analyticsService := analytics.NewAnalyticsService(analyticsRepo)

	// Init handler
	userHandler := rest.NewUserHandler(usersService)
	partnerHandler := rest.NewPartnerHandler(partnerService)
	productHandler := rest.NewProductHandler(productService)
	linkHandler := rest.NewLinkHandler(linkService, clickService)
	campaignHandler := rest.NewCampaignHandler(campaignService)
	conversionHandler := rest.NewConversionHandler(attributionService)
	payoutHandler := rest.NewPayoutHandler(payoutService)
	analyticsHandler := rest.NewAnalyticsHandler(analyticsService)
	redirectHandler := rest.NewRedirectHandler(linkService, clickService)
	postbackHandler := rest.NewPostbackHandler(
		attributionService,
		partnerService,
		postbackLimiter,
		postbackLogRepo,
		cfg.Postback.AllowUnsigned,
		cfg.Postback.MaxPayloadBytes,
	)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly)
	router.SetupPartnerRoutes(api, partnerHandler, authRequired, adminOnly)
	router.SetupProductRoutes(api, productHandler, authRequired, adminOnly)
	router.SetupLinkRoutes(api, linkHandler, authRequired)
	router.SetupCampaignRoutes(api, campaignHandler, authRequired, adminOnly)
	router.SetupConversionRoutes(api, conversionHandler, authRequired, adminOnly)
	router.SetupPayoutRoutes(api, payoutHandler, authRequired, adminOnly)
	router.SetupAnalyticsRoutes(api, analyticsHandler, authRequired)
	router.SetupPostbackRoutes(api, postbackHandler, authRequired, adminOnly)
	router.SetupRedirectRoutes(e, redirectHandler)

	// Campaign lifecycle sweeper: activates due campaigns and completes ended
	// ones until shutdown.
	lifecycleCtx, stopLifecycle := context.WithCancel(context.Background())
	defer stopLifecycle()
	go func() {
		interval := time.Duration(cfg.Postback.LifecycleIntervalMin) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-lifecycleCtx.Done():
				return
			case <-ticker.C:
				if err := campaignService.RunLifecycle(lifecycleCtx); err != nil {
					logger.Error("campaign lifecycle sweep failed", err)
				}
			}
		}
	}()

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopLifecycle()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
