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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/jaapa/jaapa-api/api/swagger"
	"github.com/jaapa/jaapa-api/internal/handler"
	"github.com/jaapa/jaapa-api/internal/middleware"
	"github.com/jaapa/jaapa-api/internal/models"
	"github.com/jaapa/jaapa-api/internal/repository"
	"github.com/jaapa/jaapa-api/internal/service"
	"github.com/jaapa/jaapa-api/pkg/cache"
	"github.com/jaapa/jaapa-api/pkg/config"
	"github.com/jaapa/jaapa-api/pkg/database"
	"github.com/jaapa/jaapa-api/pkg/document"
	"github.com/jaapa/jaapa-api/pkg/jobs"
	"github.com/jaapa/jaapa-api/pkg/logger"
	"github.com/jaapa/jaapa-api/pkg/mailer"
	corsmiddleware "github.com/jaapa/jaapa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jaapa/jaapa-api/pkg/middleware/requestid"
	"github.com/jaapa/jaapa-api/pkg/storage"
)

// @title JAAPA API
// @version 1.0.0
// @description Backend for the JAAPA drinking-water cooperative
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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summaries uncached", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	fileStore, err := storage.NewFileStore(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("document storage failed", "error", err)
	}

	validate := validator.New()

	requestRepo := repository.NewRequestRepository(db)
	personRepo := repository.NewPersonRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	serviceTypeRepo := repository.NewServiceTypeRepository(db)
	activityTypeRepo := repository.NewActivityTypeRepository(db)
	meterRepo := repository.NewMeterRepository(db)
	deferredRepo := repository.NewDeferredPaymentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	authRepo := repository.NewAuthRepository(db)

	cacheSvc := service.NewCacheService(redisClient, cfg.Summaries.CacheTTL, logr)
	metricsSvc := service.NewMetricsService()
	deferredSvc := service.NewDeferredPaymentService(deferredRepo, logr)

	notificationSvc := service.NewNotificationService(
		requestRepo, personRepo, addressRepo, serviceTypeRepo, meterRepo, deferredSvc,
		document.NewRenderer(), fileStore, mailer.New(cfg.SMTP, logr), logr,
	)
	dispatcher := jobs.NewDispatcher("notifications", notificationSvc.Handle,
		cfg.Notifications.Workers, cfg.Notifications.BufferSize, logr)

	requestSvc := service.NewRequestService(
		requestRepo, personRepo, addressRepo, serviceTypeRepo, meterRepo,
		deferredSvc, dispatcher, cacheSvc, validate, logr,
	)
	attendanceSvc := service.NewAttendanceService(
		attendanceRepo, activityTypeRepo, serviceTypeRepo, personRepo,
		cacheSvc, validate, logr,
	)
	serviceTypeSvc := service.NewServiceTypeService(serviceTypeRepo, validate, logr)
	activityTypeSvc := service.NewActivityTypeService(activityTypeRepo, logr)
	authSvc := service.NewAuthService(authRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})

	requestHandler := handler.NewRequestHandler(requestSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	serviceTypeHandler := handler.NewServiceTypeHandler(serviceTypeSvc, activityTypeSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		solicitudes := api.Group("/solicitudes")
		{
			solicitudes.POST("", requestHandler.Create)

			protected := solicitudes.Group("", middleware.JWT(authSvc))
			protected.GET("", requestHandler.List)
			protected.GET("/resumen", requestHandler.Summary)
			protected.GET("/:numero", requestHandler.Detail)
			protected.PUT("/:numero/certificado",
				middleware.RequireRoles(models.RoleAdmin, models.RoleOperator),
				requestHandler.UpdateCertificate)
		}

		asistencias := api.Group("/asistencias", middleware.JWT(authSvc))
		{
			asistencias.POST("",
				middleware.RequireRoles(models.RoleAdmin, models.RoleOperator),
				attendanceHandler.Record)
			asistencias.GET("", attendanceHandler.List)
			asistencias.GET("/resumen", attendanceHandler.Summary)
			asistencias.GET("/:id", attendanceHandler.Details)
			asistencias.PUT("/:id/detalles/:detalleId/pago",
				middleware.RequireRoles(models.RoleAdmin, models.RoleTreasury),
				attendanceHandler.PayFine)
		}

		catalogo := api.Group("")
		{
			catalogo.GET("/tipos-solicitudes", serviceTypeHandler.List)
			catalogo.GET("/tipos-solicitudes/:nombre", serviceTypeHandler.Get)
			catalogo.POST("/tipos-solicitudes",
				middleware.JWT(authSvc),
				middleware.RequireRoles(models.RoleAdmin),
				serviceTypeHandler.Create)
			catalogo.GET("/tipos-actividades", serviceTypeHandler.ListActivities)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	dispatcher.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
	dispatcher.Stop()
}
