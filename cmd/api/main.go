package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/damnjuhl/calcalc/api/swagger"
	"github.com/damnjuhl/calcalc/internal/handler"
	"github.com/damnjuhl/calcalc/internal/middleware"
	"github.com/damnjuhl/calcalc/internal/provider"
	"github.com/damnjuhl/calcalc/internal/repository"
	"github.com/damnjuhl/calcalc/internal/service"
	"github.com/damnjuhl/calcalc/pkg/cache"
	"github.com/damnjuhl/calcalc/pkg/config"
	"github.com/damnjuhl/calcalc/pkg/database"
	"github.com/damnjuhl/calcalc/pkg/logger"
	corsmiddleware "github.com/damnjuhl/calcalc/pkg/middleware/cors"
	reqidmiddleware "github.com/damnjuhl/calcalc/pkg/middleware/requestid"
)

// @title CalCalc Sync API
// @version 1.0.0
// @description Google Calendar sync backend for CalCalc
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	eventRepo := repository.NewEventRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	googleClient := provider.NewClient(cfg.Google)
	lock := cache.NewLock(redisClient)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT)
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr)
	syncSvc := service.NewSyncService(eventRepo, settingsRepo, googleClient, lock,
		cfg.Sync.LockTTL, cfg.Sync.ImportWindow, metricsSvc, logr)
	googleAuthSvc := service.NewGoogleAuthService(googleClient, settingsRepo, syncSvc, logr)
	scheduler := service.NewSchedulerService(settingsRepo, syncSvc, cfg.Sync.TickInterval, logr)

	googleHandler := handler.NewGoogleHandler(googleAuthSvc, syncSvc, settingsSvc, authSvc, cfg.Google.FrontendURL, logr)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

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
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Google redirects the browser here without an Authorization header;
	// the handler authenticates via the OAuth state parameter instead.
	api.GET("/google/callback", googleHandler.Callback)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/google/auth-url", googleHandler.AuthURL)
		authed.POST("/google/sync", googleHandler.Sync)
		authed.POST("/google/import", googleHandler.Import)
		authed.POST("/google/export", googleHandler.Export)
		authed.GET("/google/calendars", googleHandler.Calendars)
		authed.PUT("/google/default-calendar", googleHandler.UpdateDefaultCalendar)

		authed.GET("/settings", settingsHandler.Get)
		authed.GET("/settings/sync", settingsHandler.GetSync)
		authed.POST("/settings/sync", settingsHandler.UpdateSync)
		authed.POST("/settings/ui", settingsHandler.UpdateUI)
		authed.POST("/settings/financial", settingsHandler.UpdateFinancial)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sync.SchedulerEnabled {
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
