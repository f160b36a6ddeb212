package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bmlt-enabled/mayo-events-api/api/swagger"
	"github.com/bmlt-enabled/mayo-events-api/internal/bmlt"
	"github.com/bmlt-enabled/mayo-events-api/internal/federation"
	"github.com/bmlt-enabled/mayo-events-api/internal/handler"
	"github.com/bmlt-enabled/mayo-events-api/internal/middleware"
	"github.com/bmlt-enabled/mayo-events-api/internal/repository"
	"github.com/bmlt-enabled/mayo-events-api/internal/service"
	"github.com/bmlt-enabled/mayo-events-api/pkg/cache"
	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
	"github.com/bmlt-enabled/mayo-events-api/pkg/database"
	"github.com/bmlt-enabled/mayo-events-api/pkg/logger"
	corsmiddleware "github.com/bmlt-enabled/mayo-events-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bmlt-enabled/mayo-events-api/pkg/middleware/requestid"
)

// @title Mayo Events API
// @version 1.0.0
// @description Community events service with moderation, recurring schedules and federation
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Events.CacheTTL, logr, true)
	}

	validate := validator.New()

	eventRepo := repository.NewEventRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	sourceRepo := repository.NewSourceRepository(db)

	bmltClient := bmlt.NewClient(cfg.BMLT, logr)
	resolver := bmlt.NewResolver(bmltClient, cfg.BMLT.CacheTTL, logr)
	federationClient := federation.NewClient(cfg.Federation, logr)

	eventSvc := service.NewEventService(eventRepo, sourceRepo, federationClient, resolver,
		nil, cacheSvc, metricsSvc, validate, logr, cfg.Events)
	announcementSvc := service.NewAnnouncementService(announcementRepo, eventRepo, resolver, nil, validate, logr)
	sourceSvc := service.NewSourceService(sourceRepo, cacheSvc, validate, logr)
	feedSvc := service.NewFeedService(eventSvc, cacheSvc, cfg.Feeds, logr)
	exportSvc := service.NewExportService(eventSvc, cfg.Exports.Enabled, logr, nil, nil)
	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)

	eventHandler := handler.NewEventHandler(eventSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	sourceHandler := handler.NewSourceHandler(sourceSvc)
	feedHandler := handler.NewFeedHandler(feedSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	serviceBodyHandler := handler.NewServiceBodyHandler(resolver)
	cacheHandler := handler.NewCacheHandler(resolver, cacheSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/events", eventHandler.List)
		api.GET("/events/search", eventHandler.Search)
		api.GET("/events/calendar.ics", feedHandler.CalendarICS)
		api.GET("/events/feed.rss", feedHandler.FeedRSS)
		api.GET("/events/:id", eventHandler.Get)
		api.GET("/event/:slug", eventHandler.GetBySlug)
		api.POST("/submit-event", eventHandler.Submit)
		api.GET("/announcements", announcementHandler.ListActive)
		api.GET("/service-bodies", serviceBodyHandler.List)
	}

	admin := r.Group(cfg.APIPrefix)
	admin.Use(middleware.JWT(authSvc))
	{
		admin.GET("/events/search-all", eventHandler.SearchAll)
		admin.GET("/events/export", exportHandler.Export)
		admin.PUT("/events/:id", eventHandler.Update)
		admin.PATCH("/events/:id/status", eventHandler.UpdateStatus)
		admin.DELETE("/events/:id", eventHandler.Delete)

		admin.GET("/announcements/:id", announcementHandler.Get)
		admin.POST("/announcements", announcementHandler.Create)
		admin.PUT("/announcements/:id", announcementHandler.Update)
		admin.DELETE("/announcements/:id", announcementHandler.Delete)

		admin.GET("/sources", sourceHandler.List)
		admin.GET("/sources/:id", sourceHandler.Get)
		admin.POST("/sources", sourceHandler.Create)
		admin.PUT("/sources/:id", sourceHandler.Update)
		admin.DELETE("/sources/:id", sourceHandler.Delete)

		admin.POST("/cache/clear", cacheHandler.Clear)
		admin.GET("/metrics/summary", metricsHandler.Summary)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
