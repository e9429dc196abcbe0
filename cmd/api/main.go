package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Rampantfam/rampant-notion-mvp-sub000/api/swagger" // swagger docs
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/config"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/database"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/handler"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/logging"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/middleware"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/service"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/storage/objectstore"
	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Client Portal API
// @version         1.0
// @description     Engagement lifecycle, budget negotiation, deliverable approval and client dashboards.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	logger.Info("connected to PostgreSQL", "host", cfg.Database.Host, "database", cfg.Database.Name)

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, logger); err != nil {
			logger.Warn("failed to auto-migrate models", "error", err)
		}
	}

	override, err := cfg.Schema.Capabilities()
	if err != nil {
		return err
	}
	caps, err := repository.ResolveSchemaCapabilities(ctx, db, override)
	if err != nil {
		// Unknown capabilities are learned from the first cancellation instead.
		logger.Warn("schema capability detection incomplete", "error", err)
	}
	logger.Info("schema capabilities",
		"audit_columns", caps.AuditColumns.String(), "cancelled_status", caps.CancelledStatus.String())
	capabilities := repository.NewCapabilityRegistry(caps)

	var files service.FileStore
	if cfg.Storage.Enabled() {
		store, err := objectstore.NewMinioStore(cfg.Storage.ObjectStore())
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		files = store
	} else {
		logger.Info("object storage not configured, deliverables will have no download links")
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(logger, cfg.CORS.AllowOrigins)
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	deliverableRepo := repository.NewDeliverableRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := service.NewNotifier(logger, service.NewStoreSink(notificationRepo), wsHub)

	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	projectService := service.NewProjectService(projectRepo, deliverableRepo, invoiceRepo, txManager, capabilities, notifier, logger)
	budgetService := service.NewBudgetService(projectRepo, notifier, logger)
	deliverableService := service.NewDeliverableService(deliverableRepo, projectRepo, files, notifier, logger)
	dashboardService := service.NewDashboardService(clientRepo, projectRepo, invoiceRepo, notificationRepo, logger)
	clientService := service.NewClientService(clientRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, projectRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo)

	// Initialize Handlers
	secureCookie := cfg.GinMode == gin.ReleaseMode
	authHandler := handler.NewAuthHandler(authService, cfg.TokenTTL, secureCookie)
	projectHandler := handler.NewProjectHandler(projectService, budgetService, notificationService)
	deliverableHandler := handler.NewDeliverableHandler(deliverableService)
	clientHandler := handler.NewClientHandler(clientService, dashboardService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(pingCtx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DEGRADED", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "websocket_subscribers": wsHub.SubscriberCount()})
	})

	secret := []byte(cfg.JWTSecret)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, secret)
	})

	auth := middleware.RequireAuth(secret)
	authHandler.RegisterRoutes(router.Group(""), auth)
	projectHandler.RegisterRoutes(router.Group(""), auth)
	deliverableHandler.RegisterRoutes(router.Group(""), auth)
	clientHandler.RegisterRoutes(router.Group(""), auth)
	invoiceHandler.RegisterRoutes(router.Group(""), auth)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
