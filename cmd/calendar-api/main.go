package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/calendar-scolar-api/api/swagger"
	"github.com/noah-isme/calendar-scolar-api/internal/handler"
	"github.com/noah-isme/calendar-scolar-api/internal/repository"
	"github.com/noah-isme/calendar-scolar-api/internal/service"
	"github.com/noah-isme/calendar-scolar-api/pkg/cache"
	"github.com/noah-isme/calendar-scolar-api/pkg/config"
	"github.com/noah-isme/calendar-scolar-api/pkg/database"
	"github.com/noah-isme/calendar-scolar-api/pkg/export"
	"github.com/noah-isme/calendar-scolar-api/pkg/ics"
	"github.com/noah-isme/calendar-scolar-api/pkg/jobs"
	"github.com/noah-isme/calendar-scolar-api/pkg/logger"
	"github.com/noah-isme/calendar-scolar-api/pkg/storage"
)

// @title Calendar Școlar API
// @version 1.0.0
// @description School calendar feeds (ICS) for Romanian counties and the admin API behind them.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database, cfg.Startup, logr)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Startup, logr)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Feed.CacheTTL, logr, redisClient != nil)

	countyRepo := repository.NewCountyRepository(db)
	eventRepo := repository.NewEventRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	vacationRepo := repository.NewVacationRepository(db)

	eventSvc := service.NewEventService(eventRepo, cacheSvc, cfg.Feed.CacheTTL, validate, logr)
	promoSvc := service.NewPromoService(promoRepo, cacheSvc, validate, logr)
	countySvc := service.NewCountyService(countyRepo, vacationRepo, cacheSvc, cfg.Feed.CacheTTL, cfg.Feed.SchoolYear, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, cacheSvc, cfg.Feed.CacheTTL, cfg.Feed.SchoolYear, validate, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, countyRepo, metricsSvc, validate, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.Expiration})

	tracker := service.NewImpressionTracker(promoRepo, jobs.QueueConfig{
		Workers:       cfg.Tracking.Workers,
		BufferSize:    cfg.Tracking.BufferSize,
		MaxRetries:    cfg.Tracking.MaxRetries,
		RetryDelay:    cfg.Tracking.RetryDelay,
		MaxRetryDelay: cfg.Tracking.MaxRetryDelay,
	}, cfg.Tracking.FlushMaxBatch, metricsSvc, logr)
	// Workers outlive the signal context so Stop can drain buffered impressions.
	tracker.Start(context.Background())

	feedSvc := service.NewFeedService(service.FeedDeps{
		Events:        eventSvc,
		Promos:        promoSvc,
		Counties:      countySvc,
		Settings:      settingsSvc,
		Subscriptions: subscriptionSvc,
		Impressions:   tracker,
		Premium:       storage.NewSignedURLSigner(cfg.Feed.PremiumSecret, cfg.Feed.PremiumTTL),
		Generator:     ics.NewGenerator(ics.WithDomain(cfg.Feed.Domain)),
		Metrics:       metricsSvc,
		Logger:        logr,
	})
	exportSvc := service.NewExportService(feedSvc, countySvc, logr, export.NewCSVExporter(), export.NewPDFExporter())

	scheduler := jobs.NewScheduler(logr, time.Minute)
	if err := scheduler.Add("promo-refresh", cfg.Feed.PromoRefreshCron, promoSvc.RefreshActive); err != nil {
		logr.Fatal("invalid promo refresh schedule", zap.Error(err))
	}
	if err := scheduler.Add("impression-flush", cfg.Tracking.FlushCron, tracker.Flush); err != nil {
		logr.Fatal("invalid impression flush schedule", zap.Error(err))
	}
	scheduler.RunNow("promo-refresh", promoSvc.RefreshActive)
	scheduler.Start()

	checks := map[string]handler.Pinger{
		"postgres": handler.PingFunc(db.PingContext),
		"redis":    nil,
	}
	if redisClient != nil {
		checks["redis"] = cacheRepo
	}

	router := handler.NewRouter(handler.RouterDeps{
		Config: handler.RouterConfig{
			APIPrefix:      cfg.APIPrefix,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MetricsEnabled: cfg.Metrics.Enabled,
		},
		Logger:   logr,
		Metrics:  metricsSvc,
		Tokens:   tokenSvc,
		Settings: settingsSvc,
	}, handler.Handlers{
		Feeds:       handler.NewFeedHandler(feedSvc, exportSvc),
		Public:      handler.NewPublicHandler(countySvc, promoSvc, subscriptionSvc),
		Events:      handler.NewEventHandler(eventSvc),
		Promos:      handler.NewPromoHandler(promoSvc),
		Counties:    handler.NewCountyHandler(countySvc),
		Settings:    handler.NewSettingsHandler(settingsSvc),
		Subscribers: handler.NewSubscriberHandler(subscriptionSvc, feedSvc, cfg.Feed.PublicBaseURL),
		Ops:         handler.NewMetricsHandler(metricsSvc, checks),
	})

	if !cfg.IsProduction() {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
	tracker.Stop(shutdownCtx)
}
