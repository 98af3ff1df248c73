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

	_ "github.com/noah-isme/tuition-web/api/swagger"
	"github.com/noah-isme/tuition-web/internal/handler"
	"github.com/noah-isme/tuition-web/internal/middleware"
	"github.com/noah-isme/tuition-web/internal/repository"
	"github.com/noah-isme/tuition-web/internal/service"
	"github.com/noah-isme/tuition-web/pkg/cache"
	"github.com/noah-isme/tuition-web/pkg/config"
	"github.com/noah-isme/tuition-web/pkg/httpclient"
	"github.com/noah-isme/tuition-web/pkg/logger"
	corsmiddleware "github.com/noah-isme/tuition-web/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tuition-web/pkg/middleware/requestid"
	"github.com/noah-isme/tuition-web/web"
)

// @title Tuition Web
// @version 1.0.0
// @description Student dashboard for tuition posts
// @BasePath /
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

	metrics := service.NewMetricsService()

	checks := map[string]handler.ReadinessCheck{}
	var store service.NotificationStore = repository.NewMemoryNotificationRepository()
	if cfg.Notifications.RedisEnabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, notifications kept in memory", zap.Error(err))
		} else {
			redisStore := repository.NewRedisNotificationRepository(client, cfg.Notifications.TTL, logr)
			defer redisStore.Close() //nolint:errcheck
			store = redisStore
			checks["redis"] = func(c *gin.Context) error {
				return client.Ping(c.Request.Context()).Err()
			}
		}
	}
	notifications := service.NewNotificationService(store, metrics, logr)

	backendClient := httpclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	backends := func(token string) service.TuitionBackend {
		return repository.NewTuitionRepository(backendClient.WithCredential(token), metrics, logr)
	}
	registry := service.NewSessionRegistry(backends, notifications, metrics, logr, service.SessionConfig{TTL: cfg.Session.TTL})
	defer registry.CloseAll()

	auth := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.Auth.JWTSecret})
	exports := service.NewExportService(metrics, logr, nil, nil)

	tmpl, err := web.Templates(handler.TemplateFuncs())
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	dashboardHandler := handler.NewDashboardHandler(registry, exports, cfg.Export.Enabled)
	pageHandler := handler.NewPageHandler(registry, cfg.Export.Enabled)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	session := middleware.Session(middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}, notifications)

	pages := r.Group("/", session, middleware.OptionalJWT(auth, cfg.Auth.CookieName))
	pages.GET("/", pageHandler.About)
	pages.GET("/about", pageHandler.About)
	pages.GET("/dashboard", pageHandler.Dashboard)

	api := r.Group("/api/dashboard", session, middleware.JWT(auth, cfg.Auth.CookieName))
	api.POST("/load", dashboardHandler.Load)
	api.GET("/tuitions", dashboardHandler.List)
	api.GET("/stats", dashboardHandler.Stats)
	api.POST("/tuitions/:id/edit", dashboardHandler.RequestEdit)
	api.PUT("/edit", dashboardHandler.SubmitEdit)
	api.DELETE("/edit", dashboardHandler.CloseEdit)
	api.POST("/tuitions/:id/delete", dashboardHandler.RequestDelete)
	api.POST("/delete/confirm", dashboardHandler.ConfirmDelete)
	api.DELETE("/delete", dashboardHandler.CloseDelete)
	api.GET("/export", dashboardHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
}
