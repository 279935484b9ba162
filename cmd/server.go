package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"propertyms/internal/caching"
	"propertyms/internal/config"
	"propertyms/internal/handlers"
	"propertyms/internal/jobs/background"
	"propertyms/internal/middleware"
	"propertyms/internal/models"
	"propertyms/internal/repositories"
	"propertyms/internal/services"
	"propertyms/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	apiVersion      = "v1"
	shutdownTimeout = 15 * time.Second
)

// app holds the wired services shared by the serve and generate-payments
// commands.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	pool   *pgxpool.Pool

	// nil when the backend is not configured
	cache   caching.CacheService
	archive services.CallbackArchive

	buildings     services.BuildingService
	tenancies     services.TenancyService
	units         services.UnitService
	maintenance   services.MaintenanceService
	payments      services.PaymentService
	paymentLinks  services.PaymentLinkService
	reconciler    services.ReconciliationService
	notifications services.NotificationService
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	a := &app{cfg: cfg, logger: logger, pool: pool}

	if cfg.Redis.Addr != "" {
		a.cache = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	} else {
		logger.Info("REDIS_ADDR not set, summary cache and callback rate limiting disabled")
	}

	if cfg.Minio.Enabled() {
		archive, err := services.NewMinioCallbackArchive(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize callback archive, continuing without it")
		} else {
			if err := archive.EnsureBucketExists(ctx); err != nil {
				logger.WithError(err).WithField("bucket", cfg.Minio.Bucket).Warn("Failed to ensure callback bucket exists")
			}
			a.archive = archive
		}
	}

	mailer := services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)
	if mailer == nil {
		logger.Info("SMTP_HOST not set, notifications are stored in-app only")
	}

	gateway := services.NewTahseeelService(services.TahseeelConfig{
		BaseURL:     cfg.Gateway.APIURL,
		UID:         cfg.Gateway.UID,
		Password:    cfg.Gateway.Password,
		Secret:      cfg.Gateway.Secret,
		CallbackURL: cfg.Gateway.CallbackURL,
		Timeout:     cfg.Gateway.Timeout(),
	}, logger)
	if !gateway.IsConfigured() {
		logger.Warn("Tahseeel credentials missing, payment link creation is disabled")
	}

	tenancyRepo := repositories.NewTenancyRepo(pool)
	unitRepo := repositories.NewUnitRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	buildingRepo := repositories.NewBuildingRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	paymentLinkRepo := repositories.NewPaymentLinkRepo(pool)
	notificationRepo := repositories.NewNotificationRepo(pool)
	maintenanceRepo := repositories.NewMaintenanceRepo(pool)

	a.notifications = services.NewNotificationService(notificationRepo, mailer, logger)
	a.tenancies = services.NewTenancyService(tenancyRepo, unitRepo, userRepo, logger)
	a.buildings = services.NewBuildingService(buildingRepo, userRepo, tenancyRepo, logger)
	a.units = services.NewUnitService(unitRepo, buildingRepo, logger)
	a.maintenance = services.NewMaintenanceService(maintenanceRepo, a.notifications, logger)
	a.payments = services.NewPaymentService(paymentRepo, buildingRepo, gateway, a.notifications, a.cache, logger)
	a.paymentLinks = services.NewPaymentLinkService(paymentLinkRepo, gateway, logger)
	a.reconciler = services.NewReconciliationService(paymentRepo, gateway, a.notifications, a.archive, a.cache, logger)

	return a, nil
}

func (a *app) Close() {
	a.pool.Close()
}

func runServer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var scheduler *background.JobScheduler
	if cfg.AutoGenerate {
		scheduler, err = background.NewJobScheduler(a.payments, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.WithError(err).Warn("Failed to stop job scheduler")
			}
		}()
	}

	e := a.router(scheduler)

	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "version": version}).Info("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// router builds the echo instance. scheduler may be nil.
func (a *app) router(scheduler *background.JobScheduler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{a.cfg.FrontendURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.AuditLog(a.logger))
	e.Use(middleware.VersionHeader(apiVersion, version))

	health := handlers.NewHealthHandlers(a.pool, a.cache, a.archive, version)
	buildingHandlers := handlers.NewBuildingHandlers(a.buildings, a.units, a.logger)
	tenancyHandlers := handlers.NewTenancyHandlers(a.tenancies, a.logger)
	unitHandlers := handlers.NewUnitHandlers(a.units, a.logger)
	paymentHandlers := handlers.NewPaymentHandlers(a.payments, a.logger)
	linkHandlers := handlers.NewPaymentLinkHandlers(a.paymentLinks, a.logger)
	notificationHandlers := handlers.NewNotificationHandlers(a.notifications, a.logger)
	maintenanceHandlers := handlers.NewMaintenanceHandlers(a.maintenance, a.logger)
	webhookHandlers := handlers.NewWebhookHandlers(a.reconciler, a.cache, a.cfg.FrontendURL, a.cfg.CallbackLimit, a.logger)

	e.GET("/health", health.HealthCheck)
	e.GET("/health/ready", health.ReadinessCheck)
	e.GET("/health/live", health.LivenessCheck)

	api := e.Group("/api")

	// The gateway redirects the payer's browser here without a token.
	api.GET("/payments/callback", webhookHandlers.TahseeelCallback)
	api.POST("/payments/callback", webhookHandlers.TahseeelCallback)

	protected := api.Group("", middleware.JWTAuth(a.cfg.JWTSecret))
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleOwner)

	// Buildings
	protected.GET("/buildings", buildingHandlers.ListBuildings, staff)
	protected.POST("/buildings", buildingHandlers.CreateBuilding, adminOnly)
	protected.GET("/buildings/:id", buildingHandlers.GetBuilding)
	protected.PUT("/buildings/:id", buildingHandlers.UpdateBuilding, staff)
	protected.DELETE("/buildings/:id", buildingHandlers.DeleteBuilding, adminOnly)
	protected.GET("/buildings/:id/units", buildingHandlers.ListBuildingUnits, staff)

	// Tenancies
	protected.GET("/tenancies", tenancyHandlers.ListTenancies)
	protected.GET("/tenancies/my", tenancyHandlers.MyTenancies, middleware.RequireRoles(models.RoleTenant))
	protected.GET("/tenancies/:id", tenancyHandlers.GetTenancy)
	protected.POST("/tenancies", tenancyHandlers.CreateTenancy, adminOnly)
	protected.PUT("/tenancies/:id", tenancyHandlers.UpdateTenancy, staff)
	protected.POST("/tenancies/:id/end", tenancyHandlers.EndTenancy, staff)
	protected.DELETE("/tenancies/:id", tenancyHandlers.DeleteTenancy, adminOnly)

	// Units
	protected.GET("/units", unitHandlers.ListUnits, staff)
	protected.POST("/units", unitHandlers.CreateUnit, adminOnly)
	protected.GET("/units/:id", unitHandlers.GetUnit, staff)
	protected.PUT("/units/:id", unitHandlers.UpdateUnit, staff)
	protected.DELETE("/units/:id", unitHandlers.DeleteUnit, staff)

	// Payments
	protected.GET("/payments", paymentHandlers.ListPayments)
	protected.GET("/payments/:id", paymentHandlers.GetPayment)
	protected.POST("/payments/generate", paymentHandlers.GeneratePayments, adminOnly)
	protected.PUT("/payments/:id", paymentHandlers.UpdatePayment, staff)
	protected.DELETE("/payments/:id", paymentHandlers.DeletePayment, adminOnly)
	protected.POST("/payments/:id/link", paymentHandlers.CreatePaymentLink, staff)
	protected.GET("/payments/summary/building/:buildingId", paymentHandlers.BuildingSummary, staff)

	// Standalone payment links
	protected.POST("/payment-links", linkHandlers.GeneratePaymentLink, staff)
	protected.GET("/payment-links", linkHandlers.ListPaymentLinks, staff)

	// Notifications
	protected.GET("/notifications", notificationHandlers.ListNotifications)
	protected.GET("/notifications/unread-count", notificationHandlers.UnreadCount)
	protected.PUT("/notifications/read-all", notificationHandlers.MarkAllAsRead)
	protected.PUT("/notifications/:id/read", notificationHandlers.MarkAsRead)
	protected.DELETE("/notifications/:id", notificationHandlers.DeleteNotification)

	// Maintenance
	protected.GET("/maintenance", maintenanceHandlers.ListRequests)
	protected.GET("/maintenance/:id", maintenanceHandlers.GetRequest)
	protected.POST("/maintenance", maintenanceHandlers.CreateRequest, middleware.RequireRoles(models.RoleTenant))
	protected.PUT("/maintenance/:id", maintenanceHandlers.UpdateRequest)
	protected.DELETE("/maintenance/:id", maintenanceHandlers.DeleteRequest, adminOnly)

	if scheduler != nil {
		protected.GET("/jobs/status", func(c echo.Context) error {
			return c.JSON(http.StatusOK, scheduler.GetJobStatus())
		}, adminOnly)
	}

	return e
}
