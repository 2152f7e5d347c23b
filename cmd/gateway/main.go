package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ArbathAbdurrahman/ngajiqu-gateway/api/swagger"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/handler"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/middleware"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/remote"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/repository"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/service"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/session"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/cache"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/database"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/jobs"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/logger"
	corsmiddleware "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/middleware/requestid"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/storage"
)

// @title NgajiQu Gateway
// @version 0.1.0
// @description BFF gateway for the NgajiQu recitation tracker
// @BasePath /api
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var sessionStorage session.Storage
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Warnw("postgres unavailable, sessions held in memory", "error", err)
		sessionStorage = session.NewMemoryStorage()
	} else {
		defer db.Close() //nolint:errcheck
		sessionStorage = repository.NewSessionRepository(db)
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, detail cache disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metrics, cfg.Detail.CacheTTL, logr, false)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Detail.CacheTTL, logr, cfg.Detail.CacheEnabled)
	}

	client := remote.NewClient(cfg.Upstream, logr, metrics)
	hub := store.NewHub(client, sessionStorage, logr)

	detailSvc := service.NewDetailService(hub, cacheSvc, cfg.Detail.CacheTTL, jobs.QueueConfig{
		Workers:    cfg.Prefetch.Workers,
		BufferSize: cfg.Prefetch.BufferSize,
		MaxRetries: cfg.Prefetch.MaxRetries,
		RetryDelay: cfg.Prefetch.RetryDelay,
		Logger:     logr,
	}, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	detailSvc.Start(ctx)
	defer detailSvc.Stop()

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	exportSigner := storage.NewTokenSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(exportStorage, exportSigner, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr)

	shareSigner := storage.NewTokenSigner(cfg.Share.Secret, cfg.Share.TTL)
	shareSvc := service.NewShareService(shareSigner, cfg.APIPrefix, logr)

	authHandler := handler.NewAuthHandler(hub, cfg.JWT)
	kelasHandler := handler.NewKelasHandler(hub, detailSvc)
	aktivitasHandler := handler.NewAktivitasHandler(hub, client, detailSvc)
	santriHandler := handler.NewSantriHandler(hub, detailSvc)
	kartuHandler := handler.NewKartuHandler(hub, detailSvc)
	detailHandler := handler.NewClassDetailHandler(detailSvc)
	publicHandler := handler.NewPublicHandler(shareSvc, detailSvc)
	exportHandler := handler.NewExportHandler(hub, client, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Session(cfg.Session, cfg.JWT))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metrics))

	api := r.Group(cfg.APIPrefix)

	api.GET("/health", metricsHandler.Health)
	api.GET("/metrics", metricsHandler.Prometheus)

	auth := api.Group("/auth")
	auth.POST("/login", middleware.RedirectAuthenticated(cfg.Guard, cfg.JWT), authHandler.Login)
	auth.POST("/register", middleware.RedirectAuthenticated(cfg.Guard, cfg.JWT), authHandler.Register)
	auth.POST("/refresh", authHandler.Refresh)

	// Aliases matching the upstream client's flat login paths.
	api.POST("/login", middleware.RedirectAuthenticated(cfg.Guard, cfg.JWT), authHandler.Login)
	api.POST("/register", middleware.RedirectAuthenticated(cfg.Guard, cfg.JWT), authHandler.Register)

	api.GET("/public/kelas/:slug", publicHandler.View)
	api.GET("/export/:token", exportHandler.Download)

	guarded := api.Group("", middleware.Guard(cfg.Guard, cfg.JWT))
	guarded.POST("/auth/logout", authHandler.Logout)
	guarded.GET("/auth/me", authHandler.Me)

	guarded.GET("/kelas", kelasHandler.List)
	guarded.POST("/kelas", kelasHandler.Create)
	guarded.GET("/kelas/:slug", kelasHandler.Get)
	guarded.PUT("/kelas/:slug", kelasHandler.Update)
	guarded.DELETE("/kelas/:slug", kelasHandler.Delete)
	guarded.GET("/kelas/:slug/detail", detailHandler.Get)
	guarded.POST("/kelas/:slug/share", publicHandler.CreateShare)
	guarded.GET("/kelas/:slug/aktivitas", aktivitasHandler.List)

	guarded.POST("/aktivitas", aktivitasHandler.Create)
	guarded.GET("/aktivitas/:id", aktivitasHandler.Get)
	guarded.DELETE("/aktivitas/:id", aktivitasHandler.Delete)

	guarded.GET("/santri", santriHandler.List)
	guarded.POST("/santri", santriHandler.Create)
	guarded.DELETE("/santri/:id", santriHandler.Delete)
	guarded.GET("/santri/:id/kartu/export", exportHandler.Generate)

	guarded.GET("/kartu", kartuHandler.List)
	guarded.POST("/kartu", kartuHandler.Create)
	guarded.DELETE("/kartu/:id", kartuHandler.Delete)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := hub.Sweep(cfg.Session.TTL); n > 0 {
					logr.Sugar().Infow("idle session stores evicted", "count", n)
				}
				exportSvc.Cleanup()
				if repo, ok := sessionStorage.(*repository.SessionRepository); ok {
					cutoff := time.Now().Add(-cfg.Session.TTL)
					if _, err := repo.PurgeIdle(ctx, cutoff); err != nil {
						logr.Sugar().Warnw("session purge failed", "error", err)
					}
				}
			}
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("gateway starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("gateway failed", "error", err)
	}
}
