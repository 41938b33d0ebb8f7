package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tnmle/vastra-backend/config"
	"github.com/tnmle/vastra-backend/internal/app/controller"
	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"github.com/tnmle/vastra-backend/internal/app/service"
	"github.com/tnmle/vastra-backend/internal/db"
	"github.com/tnmle/vastra-backend/internal/middleware"
	"github.com/tnmle/vastra-backend/internal/router"
	"github.com/tnmle/vastra-backend/internal/scheduler"
	"github.com/tnmle/vastra-backend/internal/storage"
	"github.com/tnmle/vastra-backend/internal/ws"
	"github.com/tnmle/vastra-backend/pkg/logger"
	"github.com/tnmle/vastra-backend/pkg/redis"
)

// orderEventFanout pushes order events to the admin feed and drops the
// cached dashboard numbers, which every order write makes stale.
type orderEventFanout struct {
	hub       *ws.Hub
	dashboard service.DashboardService
}

func (f *orderEventFanout) PublishOrderEvent(event string, order *model.Order) {
	f.hub.PublishOrderEvent(event, order)
	f.dashboard.InvalidateCache()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Vastra Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, caching and token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
		}
	}

	var objectStorage storage.ObjectStorage
	if cfg.S3.Bucket != "" {
		objectStorage = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	skuRepo := repository.NewSKURepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	auditRepo := repository.NewAuditLogRepository(db.GetDB())

	// Live order feed for the back office
	hub := ws.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	productService := service.NewProductService(productRepo, categoryRepo, objectStorage)
	inventoryService := service.NewInventoryService(productRepo, skuRepo, db.GetDB())
	cartService := service.NewCartService(cartRepo, skuRepo)
	auditService := service.NewAuditService(auditRepo)
	dashboardService := service.NewDashboardService(orderRepo, productRepo, skuRepo, cfg.Report.LowStockThreshold)
	orderService := service.NewOrderService(orderRepo, db.GetDB(), &orderEventFanout{
		hub:       hub,
		dashboard: dashboardService,
	})
	reportService := service.NewReportService(orderRepo, productRepo, skuRepo, db.GetDB(), objectStorage, cfg.Report.LowStockThreshold)

	// Controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService, inventoryService, auditService, objectStorage)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService, auditService)
	exportController := controller.NewExportController(reportService)
	dashboardController := controller.NewDashboardController(dashboardService, auditService)
	feedController := controller.NewFeedController(hub, cfg.CORS.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Nightly reconciliation + report
	reportScheduler := scheduler.NewReportScheduler(reportService, auditService, cfg.Report.Schedule)
	if err := reportScheduler.Start(); err != nil {
		logger.Error("Report scheduler failed to start", err)
	}
	defer reportScheduler.Stop()

	r := router.NewRouter(
		authController,
		productController,
		cartController,
		orderController,
		exportController,
		dashboardController,
		feedController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
