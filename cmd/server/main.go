package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/khighway/storefront-service/config"
	_ "github.com/khighway/storefront-service/docs"
	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/handlers"
	"github.com/khighway/storefront-service/internal/jobs"
	"github.com/khighway/storefront-service/internal/middleware"
	"github.com/khighway/storefront-service/internal/pricing"
	"github.com/khighway/storefront-service/internal/sweepers"
	"github.com/khighway/storefront-service/internal/telemetry"
)

// @title Storefront Service API
// @version 1.0
// @description Internal API for pricing resolution, campaign management, and cart storage.
// @BasePath /internal
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting storefront service")

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	telemetryCleanup, err := telemetry.Init(ctx, telemetry.GetConfigFromEnv())
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry disabled")
		telemetryCleanup = func(context.Context) error { return nil }
	}

	campaignCache := pricing.NewCampaignCache(database.Campaigns{}, cfg.Pricing.CacheTTL, nil)
	resolver := pricing.NewResolver(campaignCache, nil)
	handlers.InitPricing(campaignCache, resolver)

	campaignSweeper := sweepers.NewCampaignSweeper(campaignCache, logger, cfg.Pricing.SweepInterval)
	go campaignSweeper.Start(ctx)

	cleanupStop := make(chan struct{})
	if cfg.Cleanup.Enabled {
		go runCleanupLoop(ctx, cfg.Cleanup, logger, cleanupStop)
	}

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	publicLimit := middleware.RateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
	router.GET("/health", publicLimit, handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", publicLimit, ginSwagger.WrapHandler(swaggerFiles.Handler))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware())
	internal.Use(middleware.ServiceRateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize))
	{
		internal.GET("/health", handlers.HealthCheck)

		pricingGroup := internal.Group("/pricing")
		{
			pricingGroup.GET("/:productId", handlers.GetProductPricing)
		}

		campaigns := internal.Group("/campaigns")
		{
			campaigns.GET("", handlers.ListCampaigns)
			campaigns.POST("", handlers.CreateCampaign)
			campaigns.POST("/import", handlers.ImportCampaigns)
			campaigns.GET("/:campaignId", handlers.GetCampaign)
			campaigns.PUT("/:campaignId", handlers.UpdateCampaign)
			campaigns.DELETE("/:campaignId", handlers.DeleteCampaign)
		}

		carts := internal.Group("/carts")
		{
			carts.GET("/:identity", handlers.GetCart)
			carts.PUT("/:identity", handlers.PutCart)
			carts.DELETE("/:identity", handlers.DeleteCart)
			carts.POST("/:identity/reconcile", handlers.ReconcileCart)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	campaignSweeper.Stop()
	close(cleanupStop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := telemetryCleanup(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}

// runCleanupLoop runs retention cleanup on a fixed interval until stopped
func runCleanupLoop(ctx context.Context, cfg config.CleanupConfig, logger *zerolog.Logger, stop <-chan struct{}) {
	logger.Info().
		Dur("interval", cfg.Interval).
		Int("campaign_retention_days", cfg.CampaignRetentionDays).
		Int("cart_retention_days", cfg.CartRetentionDays).
		Msg("Starting cleanup loop")

	jobCfg := jobs.CleanupConfig{
		CampaignRetentionDays: cfg.CampaignRetentionDays,
		CartRetentionDays:     cfg.CartRetentionDays,
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if err := jobs.CleanupEndedCampaigns(ctx, database.Pool(), jobCfg); err != nil {
				logger.Error().Err(err).Msg("Campaign cleanup failed")
			}
			if err := jobs.CleanupStaleCarts(ctx, database.Pool(), jobCfg); err != nil {
				logger.Error().Err(err).Msg("Cart cleanup failed")
			}
		}
	}
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "storefront-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
