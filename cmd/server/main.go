package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	eventapp "github.com/ecomdash/backend/internal/application/event"
	insightapp "github.com/ecomdash/backend/internal/application/insight"
	merchantapp "github.com/ecomdash/backend/internal/application/merchant"
	syncapp "github.com/ecomdash/backend/internal/application/sync"
	webhookapp "github.com/ecomdash/backend/internal/application/webhook"
	"github.com/ecomdash/backend/internal/infrastructure/auth"
	"github.com/ecomdash/backend/internal/infrastructure/cache"
	"github.com/ecomdash/backend/internal/infrastructure/config"
	"github.com/ecomdash/backend/internal/infrastructure/crypto"
	"github.com/ecomdash/backend/internal/infrastructure/event"
	"github.com/ecomdash/backend/internal/infrastructure/logger"
	"github.com/ecomdash/backend/internal/infrastructure/persistence"
	"github.com/ecomdash/backend/internal/infrastructure/scheduler"
	"github.com/ecomdash/backend/internal/infrastructure/shopify"
	"github.com/ecomdash/backend/internal/infrastructure/storage"
	"github.com/ecomdash/backend/internal/infrastructure/telemetry"
	"github.com/ecomdash/backend/internal/interfaces/http/handler"
	"github.com/ecomdash/backend/internal/interfaces/http/middleware"
	"github.com/ecomdash/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/ecomdash/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Ecomdash Sync API
//	@version		1.0
//	@description	Shopify synchronization and insights backend. Mirrors shop catalogs and orders, ingests webhooks, and computes merchant insights from the local mirror.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/ecomdash/backend
//	@contact.email	support@ecomdash.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	SessionToken
//	@in							header
//	@name						Authorization
//	@description				App Bridge session token. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting sync engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Distributed tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Metrics export
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query tracing and pool metrics
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	if _, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		Enabled:            cfg.Telemetry.Enabled,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}

	// Continuous profiling, enabled when a Pyroscope endpoint is configured
	if cfg.Telemetry.PyroscopeEndpoint != "" {
		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:           true,
			ServerAddress:     cfg.Telemetry.PyroscopeEndpoint,
			ApplicationName:   cfg.App.Name,
			ProfileCPU:        true,
			ProfileInuseSpace: true,
			ProfileGoroutines: true,
		}, log)
		if err != nil {
			log.Warn("Failed to start profiler", zap.Error(err))
		} else {
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()
		}
	}

	// Initialize repositories
	shopRepo := persistence.NewGormShopRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	insightRepo := persistence.NewGormInsightRepository(db.DB)
	webhookEventRepo := persistence.NewGormWebhookEventRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Access token sealing for stored platform credentials
	tokenCipher, err := crypto.NewTokenCipher(cfg.Crypto.EncryptionKey, cfg.Crypto.KeySalt, cfg.Crypto.PBKDF2Iterations)
	if err != nil {
		log.Fatal("Failed to initialize token cipher", zap.Error(err))
	}

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Platform API client factory, one rate-limited client per shop
	clientFactory, err := shopify.NewClientFactory(shopRepo, tokenCipher, shopify.Config{
		APIVersion:       cfg.Shopify.APIVersion,
		Timeout:          cfg.Shopify.Timeout,
		MaxRetries:       cfg.Shopify.MaxRetries,
		RetryBackoffBase: cfg.Shopify.RetryBackoffBase,
		RetryBackoffMax:  cfg.Shopify.RetryBackoffMax,
		MaxResponseBytes: cfg.Shopify.MaxResponseBytes,
		QuotaParser:      cfg.Shopify.QuotaParser,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize platform client factory", zap.Error(err))
	}

	// Raw webhook payload archival to object storage
	var archiver webhookapp.PayloadArchiver
	if cfg.Storage.Enabled && cfg.Webhook.ArchiveEnabled {
		s3Archiver, err := storage.NewS3PayloadArchiver(context.Background(), &cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize payload archiver", zap.Error(err))
		}
		archiver = s3Archiver
		log.Info("Webhook payload archival enabled",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("prefix", cfg.Storage.Prefix),
		)
	}

	// Initialize application services
	shopService := merchantapp.NewService(
		shopRepo, productRepo, orderRepo, insightRepo, webhookEventRepo,
		txManager, tokenCipher, eventBus, log,
	)
	syncService, err := syncapp.NewService(
		shopRepo, productRepo, orderRepo, clientFactory, eventBus,
		syncapp.Config{
			PageSize:         cfg.Sync.PageSize,
			OrdersWindowDays: cfg.Sync.OrdersWindowDays,
			Lease:            cfg.Sync.Lease,
		}, log,
	)
	if err != nil {
		log.Fatal("Failed to initialize sync service", zap.Error(err))
	}
	insightEngine, err := insightapp.NewEngine(insightapp.Config{
		WindowDays:            cfg.Insight.WindowDays,
		VelocityDaysThreshold: cfg.Insight.VelocityDaysThreshold,
		DiscountRateThreshold: cfg.Insight.DiscountRateThreshold,
		AOVChangeThreshold:    cfg.Insight.AOVChangeThreshold,
		RevenueShareThreshold: cfg.Insight.RevenueShareThreshold,
		LowStockMax:           cfg.Insight.LowStockMax,
		TTL:                   cfg.Insight.TTL,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize insight engine", zap.Error(err))
	}
	insightService := insightapp.NewService(productRepo, orderRepo, insightRepo, insightEngine, log)
	webhookService := webhookapp.NewService(
		shopRepo, productRepo, orderRepo, insightRepo, webhookEventRepo,
		txManager, shopify.WebhookVerifier{}, archiver, outboxRepo, eventBus,
		webhookapp.Config{AppSecret: cfg.Shopify.APISecret}, log,
	)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Idempotency store deduplicates event handler invocations across
	// redeliveries
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Register event handlers for cross-context integration
	// Sync completion -> insight recomputation
	insightRefreshHandler := eventapp.NewInsightRefreshHandler(insightService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(insightRefreshHandler, idempotencyStore, log))

	// Uninstall webhooks -> tenant purge (tombstone kept for dedup)
	tenantPurgeHandler := eventapp.NewTenantPurgeHandler(shopService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(tenantPurgeHandler, idempotencyStore, log))

	// Redact webhooks -> irreversible tenant erase
	tenantEraseHandler := eventapp.NewTenantEraseHandler(shopService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(tenantEraseHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("insight_refresh_events", insightRefreshHandler.EventTypes()),
		zap.Strings("tenant_purge_events", tenantPurgeHandler.EventTypes()),
		zap.Strings("tenant_erase_events", tenantEraseHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor drains committed webhook events to the event bus
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Background sync worker pool
	if cfg.Scheduler.Enabled {
		syncScheduler := scheduler.NewScheduler(scheduler.Config{
			Workers:       cfg.Scheduler.Workers,
			QueueSize:     cfg.Scheduler.QueueSize,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			MaxRetries:    cfg.Scheduler.MaxRetries,
			RetryDelay:    cfg.Scheduler.RetryDelay,
			MaxRetryDelay: cfg.Scheduler.MaxRetryDelay,
		}, syncService, log)
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := syncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		syncService.AttachQueue(syncScheduler)
		log.Info("Sync scheduler started",
			zap.Int("workers", cfg.Scheduler.Workers),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)

		// Periodic sweep enqueues incremental syncs for active shops
		if cfg.Scheduler.SweepEnabled {
			sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
				Enabled:   true,
				Interval:  cfg.Scheduler.SweepInterval,
				BatchSize: cfg.Scheduler.SweepBatchSize,
			}, shopRepo, syncService, log)
			if err := sweeper.Start(context.Background()); err != nil {
				log.Fatal("Failed to start sync sweeper", zap.Error(err))
			}
			defer func() {
				if err := sweeper.Stop(context.Background()); err != nil {
					log.Error("Error stopping sync sweeper", zap.Error(err))
				}
			}()
		}
	}

	// Business-level gauges computed from the mirror
	mirrorMetrics := persistence.NewMirrorMetricsAdapter(db.DB, cfg.Insight.LowStockMax)
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          meterProvider.Meter("ecomdash/business"),
		Logger:         log,
		MirrorProvider: mirrorMetrics,
	})
	if err != nil {
		log.Warn("Failed to initialize business metrics", zap.Error(err))
	} else {
		businessMetrics.StartPeriodicCollection(context.Background(), mirrorMetrics, 5*time.Minute)
	}

	// Initialize HTTP handlers
	shopHandler := handler.NewShopHandler(shopService)
	syncHandler := handler.NewSyncHandler(syncService)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	insightHandler := handler.NewInsightHandler(insightService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing / Metrics - Observability (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Request tracing and HTTP metrics
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.App.Name,
			Enabled:       true,
		}))
	}
	if cfg.Telemetry.PyroscopeEndpoint != "" {
		engine.Use(middleware.ProfilingAttributeInjector())
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:     cfg.Swagger.Enabled,
				RequireAuth: cfg.Swagger.RequireAuth,
				AllowedIPs:  cfg.Swagger.AllowedIPs,
			}, nil),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply session token authentication to merchant-facing API routes.
	// Webhooks authenticate by HMAC signature and system routes stay open
	// for operators behind the network boundary, both via skip prefixes.
	if cfg.Session.Enabled {
		sessionTokens := auth.NewSessionTokenService(cfg.Shopify, cfg.Session)
		sessionConfig := middleware.DefaultSessionConfig(sessionTokens, shopRepo)
		sessionConfig.Logger = log
		r.Use(middleware.SessionAuthMiddlewareWithConfig(sessionConfig))
	} else {
		log.Warn("Session token verification disabled, merchant routes are unauthenticated")
	}

	// Merchant domain (shops, sync, shop-scoped insights)
	shopRoutes := router.NewDomainGroup("shops", "/shops")
	shopRoutes.POST("", shopHandler.Register)
	shopRoutes.GET("", shopHandler.List)
	shopRoutes.GET("/:id", shopHandler.Get)
	shopRoutes.GET("/domain/:domain", shopHandler.GetByDomain)
	shopRoutes.PUT("/:id/credential", shopHandler.UpdateCredential)
	shopRoutes.DELETE("/:id", shopHandler.Delete)
	shopRoutes.POST("/:id/sync", syncHandler.Trigger)
	shopRoutes.GET("/:id/sync", syncHandler.Status)
	shopRoutes.GET("/:id/insights", insightHandler.List)
	shopRoutes.GET("/:id/insights/stats", insightHandler.Stats)
	shopRoutes.POST("/:id/insights/refresh", insightHandler.Refresh)

	// Insight domain (lifecycle on individual insights)
	insightRoutes := router.NewDomainGroup("insights", "/insights")
	insightRoutes.GET("/:id", insightHandler.Get)
	insightRoutes.POST("/:id/dismiss", insightHandler.Dismiss)
	insightRoutes.POST("/:id/action", insightHandler.MarkActioned)

	// Webhook ingestion (HMAC-authenticated)
	webhookRoutes := router.NewDomainGroup("webhooks", "/webhooks")
	webhookRoutes.POST("/shopify", webhookHandler.Ingest)

	// System routes (info, ping, outbox operations)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/dead/retry-all", outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)

	// Register all domain groups
	r.Register(shopRoutes).
		Register(insightRoutes).
		Register(webhookRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
