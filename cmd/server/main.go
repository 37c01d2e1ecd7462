package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bankingapp "github.com/qayed/backend/internal/application/banking"
	billingapp "github.com/qayed/backend/internal/application/billing"
	cashflowapp "github.com/qayed/backend/internal/application/cashflow"
	currencyapp "github.com/qayed/backend/internal/application/currency"
	ingestapp "github.com/qayed/backend/internal/application/ingest"
	matchingapp "github.com/qayed/backend/internal/application/matching"
	partnerapp "github.com/qayed/backend/internal/application/partner"
	domaincurrency "github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/ai"
	"github.com/qayed/backend/internal/infrastructure/auth"
	"github.com/qayed/backend/internal/infrastructure/cache"
	"github.com/qayed/backend/internal/infrastructure/config"
	"github.com/qayed/backend/internal/infrastructure/event"
	ingestinfra "github.com/qayed/backend/internal/infrastructure/ingest"
	"github.com/qayed/backend/internal/infrastructure/logger"
	"github.com/qayed/backend/internal/infrastructure/persistence"
	"github.com/qayed/backend/internal/infrastructure/scheduler"
	"github.com/qayed/backend/internal/infrastructure/storage"
	"github.com/qayed/backend/internal/infrastructure/telemetry"
	"github.com/qayed/backend/internal/interfaces/http/handler"
	"github.com/qayed/backend/internal/interfaces/http/middleware"
	"github.com/qayed/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Cashflow Backend API
//	@version		1.0
//	@description	Cashflow management backend: multi-currency projections, recurring payments, bank statement ingestion and transaction matching.

//	@contact.name	API Support
//	@contact.url	https://github.com/qayed/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting Cashflow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize telemetry (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: true,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	currencyRepo := persistence.NewGormCurrencyRepository(db.DB)
	rateRepo := persistence.NewGormExchangeRateRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	statementRepo := persistence.NewGormStatementRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	matchRepo := persistence.NewGormMatchRepository(db.DB)
	recurringRepo := persistence.NewGormRecurringPaymentRepository(db.DB)
	projectionRepo := persistence.NewGormProjectionRepository(db.DB)

	// Rate cache backend (in-memory or Redis)
	rateCache, err := cache.NewRateCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize rate cache", zap.Error(err))
	}
	log.Info("Rate cache initialized", zap.String("backend", cfg.Cache.Backend))

	// Currency services
	converter := domaincurrency.NewConverter(currencyRepo, rateRepo)
	currencyService := currencyapp.NewCurrencyService(currencyRepo)
	rateService := currencyapp.NewRateService(currencyRepo, rateRepo, rateCache,
		currencyapp.WithRateServiceLogger(log))
	conversionService := currencyapp.NewConversionService(converter, rateCache, cfg.Cache.RateTTL,
		currencyapp.WithConversionLogger(log))

	// Partner and billing services
	customerService := partnerapp.NewCustomerService(customerRepo)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, customerRepo, supplierRepo,
		billingapp.WithInvoiceLogger(log))

	// Initialize event bus; duplicate publishes of the same event ID are
	// suppressed so retried saves do not double-trigger projection refreshes
	eventBus := event.NewInMemoryEventBus(log,
		event.WithIdempotencyStore(event.NewInMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig()))

	// Matching and cashflow services
	matchService := matchingapp.NewMatchService(matchRepo,
		matchingapp.WithMatchLogger(log),
		matchingapp.WithEventPublisher(eventBus))
	recurringService := cashflowapp.NewRecurringService(recurringRepo,
		cashflowapp.WithRecurringLogger(log),
		cashflowapp.WithRecurringPublisher(eventBus))
	projectionService := cashflowapp.NewProjectionService(
		projectionRepo, invoiceRepo, recurringRepo, statementRepo, currencyRepo, conversionService,
		cashflowapp.WithProjectionLogger(log),
		cashflowapp.WithDefaultWindowMonths(cfg.Projection.DefaultWindowMonths),
	)

	// Document storage backend
	var docStorage bankingapp.DocumentStorage
	switch cfg.Storage.Backend {
	case "s3":
		s3Storage, err := storage.NewS3DocumentStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize S3 document storage", zap.Error(err))
		}
		docStorage = s3Storage
		log.Info("S3 document storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	default:
		docStorage = storage.NewStubDocumentStorage()
		log.Warn("Using stub document storage; uploaded documents are kept in memory only")
	}

	// Banking services
	statementService := bankingapp.NewStatementService(statementRepo, transactionRepo, docStorage,
		bankingapp.WithStatementLogger(log))

	// Statement ingestion pipeline. Extraction requires a model API key; without
	// one the upload endpoint is not registered.
	var ingestService *ingestapp.Service
	if cfg.AI.APIKey != "" {
		extractor, err := ai.NewGeminiExtractor(context.Background(), &cfg.AI, ai.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize statement extractor", zap.Error(err))
		}
		pipeline, err := ingestinfra.NewPipeline(extractor, &cfg.Ingest, ingestinfra.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize ingestion pipeline", zap.Error(err))
		}
		ingestService = ingestapp.NewService(pipeline, statementRepo, docStorage, &cfg.Ingest,
			ingestapp.WithServiceLogger(log))
		log.Info("Statement ingestion enabled",
			zap.String("model", cfg.AI.Model),
			zap.Int("workers", cfg.Ingest.WorkerPoolSize),
		)
	} else {
		log.Warn("Statement ingestion disabled: no AI API key configured")
	}

	// Register event handlers for cross-context integration.
	// Recurring payment mutation -> projection regeneration
	paymentChangedHandler := cashflowapp.NewPaymentChangedHandler(projectionService, recurringRepo, log)
	eventBus.Subscribe(paymentChangedHandler)
	log.Info("Event handlers registered",
		zap.Strings("payment_changed_events", paymentChangedHandler.EventTypes()),
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

	// Initialize projection refresh scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.RefreshCronSchedule)
		if err != nil {
			log.Warn("Invalid refresh cron schedule, using default",
				zap.String("schedule", cfg.Scheduler.RefreshCronSchedule),
				zap.Error(err))
		}
		schedulerConfig := scheduler.DefaultRefreshCronSchedulerConfig()
		schedulerConfig.CronHour = cronHour
		schedulerConfig.CronMinute = cronMinute
		schedulerConfig.DailyCronSchedule = cfg.Scheduler.RefreshCronSchedule
		schedulerConfig.WindowMonths = cfg.Projection.DefaultWindowMonths
		schedulerConfig.JobTimeout = cfg.Scheduler.JobTimeout
		schedulerConfig.RetryAttempts = cfg.Scheduler.RetryAttempts
		schedulerConfig.RetryDelay = cfg.Scheduler.RetryDelay

		refreshScheduler := scheduler.NewRefreshCronScheduler(
			schedulerConfig,
			cashflowapp.NewRefreshExecutor(projectionService),
			scheduler.NewGormCompanySource(db.DB),
			scheduler.NewSchedulerJobRepository(db.DB),
			log,
		)
		if err := refreshScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start refresh scheduler", zap.Error(err))
		}
		defer func() {
			if err := refreshScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping refresh scheduler", zap.Error(err))
			}
		}()
		log.Info("Projection refresh scheduler started",
			zap.String("schedule", cfg.Scheduler.RefreshCronSchedule),
			zap.Int("window_months", cfg.Projection.DefaultWindowMonths),
		)
	}

	// JWT authentication with Redis-backed token revocation. The blacklist
	// falls back to in-memory when Redis is unreachable.
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis token blacklist unavailable, using in-memory blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

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
	// 4. Tracing - Distributed tracing spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
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

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Initialize HTTP handlers
	currencyHandler := handler.NewCurrencyHandler(currencyService, rateService, conversionService)
	customerHandler := handler.NewCustomerHandler(customerService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	recurringHandler := handler.NewRecurringPaymentHandler(recurringService)
	projectionHandler := handler.NewProjectionHandler(projectionService)
	statementHandler := handler.NewStatementHandler(statementService)
	matchHandler := handler.NewMatchHandler(matchService)

	// Currency domain (catalog, exchange rates, conversion)
	currencyRoutes := router.NewDomainGroup("currency", "/currency")
	currencyRoutes.POST("/currencies", currencyHandler.CreateCurrency)
	currencyRoutes.GET("/currencies", currencyHandler.ListCurrencies)
	currencyRoutes.GET("/currencies/:id", currencyHandler.GetCurrency)
	currencyRoutes.PUT("/currencies/:id", currencyHandler.UpdateCurrency)
	currencyRoutes.DELETE("/currencies/:id", currencyHandler.DeleteCurrency)
	currencyRoutes.POST("/rates", currencyHandler.CreateRate)
	currencyRoutes.GET("/rates", currencyHandler.ListRates)
	currencyRoutes.GET("/rates/:id", currencyHandler.GetRate)
	currencyRoutes.PUT("/rates/:id", currencyHandler.UpdateRate)
	currencyRoutes.DELETE("/rates/:id", currencyHandler.DeleteRate)
	currencyRoutes.GET("/convert", currencyHandler.Convert)

	// Partner domain (customers, suppliers)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/customers", customerHandler.Create)
	partnerRoutes.GET("/customers", customerHandler.List)
	partnerRoutes.GET("/customers/:id", customerHandler.GetByID)
	partnerRoutes.PUT("/customers/:id", customerHandler.Update)
	partnerRoutes.DELETE("/customers/:id", customerHandler.Delete)
	partnerRoutes.POST("/suppliers", supplierHandler.Create)
	partnerRoutes.GET("/suppliers", supplierHandler.List)
	partnerRoutes.GET("/suppliers/:id", supplierHandler.GetByID)
	partnerRoutes.PUT("/suppliers/:id", supplierHandler.Update)
	partnerRoutes.DELETE("/suppliers/:id", supplierHandler.Delete)

	// Billing domain (invoices)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/invoices", invoiceHandler.Create)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.PUT("/invoices/:id", invoiceHandler.Update)
	billingRoutes.POST("/invoices/:id/mark-paid", invoiceHandler.MarkPaid)
	billingRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)

	// Cashflow domain (recurring payments, projections)
	cashflowRoutes := router.NewDomainGroup("cashflow", "/cashflow")
	cashflowRoutes.POST("/recurring-payments", recurringHandler.Create)
	cashflowRoutes.GET("/recurring-payments", recurringHandler.List)
	cashflowRoutes.GET("/recurring-payments/:id", recurringHandler.GetByID)
	cashflowRoutes.PUT("/recurring-payments/:id", recurringHandler.Update)
	cashflowRoutes.DELETE("/recurring-payments/:id", recurringHandler.Delete)
	cashflowRoutes.POST("/recurring-payments/:id/activate", recurringHandler.Activate)
	cashflowRoutes.POST("/recurring-payments/:id/deactivate", recurringHandler.Deactivate)
	cashflowRoutes.GET("/projections", projectionHandler.List)
	cashflowRoutes.POST("/projections/refresh", projectionHandler.Refresh)
	cashflowRoutes.GET("/projections/summary", projectionHandler.Summary)
	cashflowRoutes.GET("/positions", projectionHandler.Positions)

	// Banking domain (statements, transactions)
	bankingRoutes := router.NewDomainGroup("banking", "/banking")
	bankingRoutes.POST("/statements", statementHandler.Create)
	bankingRoutes.GET("/statements", statementHandler.List)
	bankingRoutes.GET("/statements/:id", statementHandler.GetByID)
	bankingRoutes.POST("/statements/:id/validate", statementHandler.Validate)
	bankingRoutes.GET("/statements/:id/document", statementHandler.DocumentURL)
	bankingRoutes.GET("/transactions", statementHandler.ListTransactions)

	// Matching domain (transaction-invoice match review)
	matchingRoutes := router.NewDomainGroup("matching", "/matching")
	matchingRoutes.GET("/matches", matchHandler.List)
	matchingRoutes.GET("/matches/:id", matchHandler.GetByID)
	matchingRoutes.POST("/matches/:id/approve", matchHandler.Approve)
	matchingRoutes.POST("/matches/:id/reject", matchHandler.Reject)
	matchingRoutes.POST("/matches/:id/dispute", matchHandler.Dispute)
	matchingRoutes.POST("/matches/reset-rejected", matchHandler.ResetRejected)
	matchingRoutes.GET("/stats", matchHandler.Stats)

	// Register all domain groups
	r.Register(currencyRoutes).
		Register(partnerRoutes).
		Register(billingRoutes).
		Register(cashflowRoutes).
		Register(bankingRoutes).
		Register(matchingRoutes)

	// Statement ingestion (SSE upload stream), only when extraction is configured
	if ingestService != nil {
		ingestHandler := handler.NewIngestHandler(ingestService, handler.WithIngestHandlerLogger(log))
		ingestRoutes := router.NewDomainGroup("ingest", "/ingest")
		ingestRoutes.POST("/statements", ingestHandler.IngestStatements)
		r.Register(ingestRoutes)
	}

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
