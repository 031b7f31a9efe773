package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/rosterhub/roster-api/api/swagger"
	"github.com/rosterhub/roster-api/internal/handler"
	"github.com/rosterhub/roster-api/internal/middleware"
	"github.com/rosterhub/roster-api/internal/models"
	"github.com/rosterhub/roster-api/internal/repository"
	"github.com/rosterhub/roster-api/internal/service"
	"github.com/rosterhub/roster-api/internal/store"
	"github.com/rosterhub/roster-api/pkg/cache"
	"github.com/rosterhub/roster-api/pkg/config"
	"github.com/rosterhub/roster-api/pkg/database"
	"github.com/rosterhub/roster-api/pkg/logger"
	corsmiddleware "github.com/rosterhub/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rosterhub/roster-api/pkg/middleware/requestid"
)

// @title Roster API
// @version 1.0.0
// @description Volunteer roster scheduling and notification service
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The roster falls back to the seed dataset and runs without
		// persistence or caching until Redis comes back.
		logr.Warn("redis unavailable, running without snapshot persistence", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()
	roster := store.New()

	userRepo := repository.NewUserRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(redisClient, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheEnabled := cfg.Cache.Enabled && redisClient != nil
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)
	rosterSvc := service.NewRosterService(roster, snapshotRepo, cacheSvc, metricsSvc, validate, logr)
	scheduleSvc := service.NewScheduleService(roster, cacheSvc, logr, cfg.Schedule.Weekday, cfg.Schedule.Weeks, cfg.Cache.TTL)
	exportSvc := service.NewExportService(scheduleSvc, logr)
	authSvc := service.NewAuthService(userRepo, rosterSvc, validate, logr, service.AuthConfig{
		AdminPassword:      cfg.Admin.Password,
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "roster-api",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := rosterSvc.Restore(ctx); err != nil {
		logr.Fatal("failed to restore roster state", zap.Error(err))
	}
	cancel()

	authHandler := handler.NewAuthHandler(authSvc)
	memberHandler := handler.NewMemberHandler(rosterSvc)
	scheduleHandler := handler.NewScheduleHandler(rosterSvc, scheduleSvc, exportSvc)
	notificationHandler := handler.NewNotificationHandler(rosterSvc)
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
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/admin/login", authHandler.AdminLogin)
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	session := api.Group("/auth", middleware.JWT(authSvc))
	session.POST("/logout", authHandler.Logout)
	session.GET("/me", authHandler.Me)

	admin := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/members", memberHandler.List)
	admin.POST("/members", memberHandler.Create)
	admin.DELETE("/members/:id", memberHandler.Delete)
	admin.GET("/schedule", scheduleHandler.Grid)
	admin.POST("/schedule/assignments", scheduleHandler.Assign)
	admin.DELETE("/schedule/assignments", scheduleHandler.Unassign)
	admin.POST("/schedule/dates/:date/notifications", scheduleHandler.Notify)
	admin.GET("/schedule/export", scheduleHandler.Export)
	admin.GET("/notifications", notificationHandler.List)

	member := api.Group("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleMember))
	member.GET("/schedule/me", scheduleHandler.MySchedule)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
