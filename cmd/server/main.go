package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amapp "github.com/npl/backend/internal/application/am"
	assetapp "github.com/npl/backend/internal/application/asset"
	docapp "github.com/npl/backend/internal/application/document"
	etlapp "github.com/npl/backend/internal/application/etl"
	eventapp "github.com/npl/backend/internal/application/event"
	identityapp "github.com/npl/backend/internal/application/identity"
	reportapp "github.com/npl/backend/internal/application/report"
	sellerapp "github.com/npl/backend/internal/application/seller"
	servicingapp "github.com/npl/backend/internal/application/servicing"
	tradeapp "github.com/npl/backend/internal/application/trade"
	valuationapp "github.com/npl/backend/internal/application/valuation"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/infrastructure/auth"
	"github.com/npl/backend/internal/infrastructure/cache"
	"github.com/npl/backend/internal/infrastructure/config"
	"github.com/npl/backend/internal/infrastructure/event"
	"github.com/npl/backend/internal/infrastructure/logger"
	"github.com/npl/backend/internal/infrastructure/persistence"
	"github.com/npl/backend/internal/infrastructure/printing"
	"github.com/npl/backend/internal/infrastructure/scheduler"
	"github.com/npl/backend/internal/infrastructure/storage"
	"github.com/npl/backend/internal/infrastructure/telemetry"
	"github.com/npl/backend/internal/infrastructure/vision"
	"github.com/npl/backend/internal/interfaces/http/handler"
	"github.com/npl/backend/internal/interfaces/http/middleware"
	"github.com/npl/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/npl/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			NPL Backend API
//	@version		1.0
//	@description	Back-office platform for distressed residential mortgage portfolios: trade acquisition, asset boarding, servicing oversight, workout tracking and portfolio reporting.

//	@contact.name	API Support
//	@contact.url	https://github.com/npl/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

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

	log.Info("Starting NPL Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Continuous profiling starts before the tracer so span profiles
	// have a running session to attach to
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.App.Name,
		Profiles:        cfg.Profiling.Profiles,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Failed to stop profiler", zap.Error(err))
		}
	}()

	// OpenTelemetry providers (no-ops when telemetry is disabled)
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
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(stopCtx); err != nil {
			log.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	if cfg.Profiling.SpanProfiles && profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Error("Failed to enable span profiles", zap.Error(err))
		}
	}

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
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(stopCtx); err != nil {
			log.Error("Failed to shut down meter provider", zap.Error(err))
		}
	}()

	// Optionally tee logs to the collector through the otelzap bridge
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		logsProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize logs provider", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := logsProvider.Shutdown(stopCtx); err != nil {
				log.Error("Failed to shut down logs provider", zap.Error(err))
			}
		}()

		bridged, err := telemetry.CreateBridgedLoggerFromConfig(&logger.Config{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			Output:     cfg.Log.Output,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}, logsProvider, cfg.Telemetry.ServiceName)
		if err != nil {
			log.Fatal("Failed to initialize bridged logger", zap.Error(err))
		}
		log = bridged
		defer func() {
			_ = logger.Sync(log)
		}()
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel,
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSkipNotFoundError(true),
	)

	// Initialize database connection with custom logger
	database, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	db := database.DB
	log.Info("Database connection established")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db); err != nil {
			log.Error("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	sellerRepo := persistence.NewGormSellerRepository(db)
	rawRepo := persistence.NewGormRawDataRepository(db)
	tapeImportRepo := persistence.NewGormTapeImportRepository(db)
	tradeRepo := persistence.NewGormTradeRepository(db)
	hubRepo := persistence.NewGormHubRepository(db)
	assetRepo := persistence.NewGormAssetRepository(db)
	valuationRepo := persistence.NewGormValuationRepository(db)
	extractRepo := persistence.NewGormExtractRepository(db)
	trackRepo := persistence.NewGormTrackRepository(db)
	detailRepo := persistence.NewGormDetailRepository(db)
	documentRepo := persistence.NewGormDocumentRepository(db)
	jobRepo := persistence.NewGormJobRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	reportRepo := persistence.NewGormPortfolioReportRepository(db)
	outboxRepo := event.NewGormOutboxRepository(db)

	// Event infrastructure: services publish to the outbox, the processor
	// relays entries to the in-memory bus where cross-context handlers run
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	eventPublisher := event.NewPersistentEventPublisher(db, outboxPublisher)

	// Object storage: any S3-compatible backend, stub when unconfigured
	var objectStorage docapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure document bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized", zap.String("bucket", s3Storage.GetBucket()))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage not configured, using stub storage")
	}

	// Vision extractor for valuation document extraction
	var visionExtractor etlapp.VisionExtractor
	if cfg.Extraction.APIKey != "" {
		genaiExtractor, err := vision.NewGenAIVisionExtractor(context.Background(), cfg.Extraction.APIKey, cfg.Extraction.Model, log)
		if err != nil {
			log.Fatal("Failed to initialize vision extractor", zap.Error(err))
		}
		visionExtractor = genaiExtractor
		log.Info("Vision extractor initialized", zap.String("model", cfg.Extraction.Model))
	} else {
		visionExtractor = vision.NewDisabledVisionExtractor()
		log.Warn("Vision API key not configured, extraction jobs will fail")
	}

	// PDF renderer for report export
	var pdfRenderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		chromeRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			RemoteURL:      cfg.Printing.RemoteURL,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer func() {
			_ = chromeRenderer.Close()
		}()
		pdfRenderer = chromeRenderer
		log.Info("PDF renderer initialized", zap.Bool("remote", cfg.Printing.RemoteURL != ""))
	} else {
		pdfRenderer = printing.NewDisabledRenderer()
		log.Warn("PDF rendering not configured, report export disabled")
	}

	// Report cache (read-through, Redis-backed). Reports degrade to
	// uncached queries when Redis is unavailable.
	var reportCache reportapp.ReportCache
	redisCache, err := cache.NewRedisReportCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, report caching disabled", zap.Error(err))
	} else {
		reportCache = redisCache
	}

	// Token blacklist for logout and force-logout
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	// Application services
	sellerService := sellerapp.NewSellerService(sellerRepo)
	tapeImportService := sellerapp.NewTapeImportService(rawRepo, tapeImportRepo, tradeRepo, log)
	tradeService := tradeapp.NewTradeService(tradeRepo, sellerRepo, rawRepo, eventPublisher, log)
	assetService := assetapp.NewAssetService(assetRepo, hubRepo, eventPublisher, log)
	valuationService := valuationapp.NewValuationService(valuationRepo, hubRepo, log)
	servicingService := servicingapp.NewImportService(extractRepo, hubRepo, assetRepo, tapeImportRepo, log)
	trackService := amapp.NewTrackService(trackRepo, detailRepo, hubRepo, assetRepo, eventPublisher, log)

	documentService := docapp.NewDocumentService(documentRepo, hubRepo, tradeRepo, objectStorage, log)
	documentConfig := docapp.DefaultDocumentServiceConfig()
	if cfg.Storage.PresignExpiration > 0 {
		documentConfig.UploadURLExpiry = cfg.Storage.PresignExpiration
	}
	documentService.SetConfig(documentConfig)

	extractionService := etlapp.NewExtractionService(jobRepo, documentRepo, objectStorage, visionExtractor, eventPublisher, log)
	extractionService.SetConfig(etlapp.ExtractionConfig{
		Model:           cfg.Extraction.Model,
		PassSize:        cfg.Extraction.PassSize,
		Concurrency:     cfg.Extraction.Concurrency,
		MaxPassAttempts: cfg.Extraction.MaxPassAttempts,
	})

	reportService := reportapp.NewReportService(reportRepo, reportCache, log)
	reportService.SetConfig(reportapp.ReportServiceConfig{CacheTTL: cfg.Report.CacheTTL})
	reportExportService := reportapp.NewReportExportService(reportService, pdfRenderer, log)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, log)
	userService := identityapp.NewUserService(userRepo, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Event bus with idempotent cross-context handlers
	var idempotencyStore shared.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisStore
	}

	eventBus := event.NewInMemoryEventBus(log)

	boardingHandler := tradeapp.NewBoardingHandler(rawRepo, hubRepo, assetRepo, valuationRepo, log)
	resolutionHandler := assetapp.NewResolutionHandler(assetRepo, log)
	extractionWriter := valuationapp.NewExtractionWriter(valuationRepo, log)

	eventBus.Subscribe(event.NewIdempotentHandler(boardingHandler, idempotencyStore, log), boardingHandler.EventTypes()...)
	eventBus.Subscribe(event.NewIdempotentHandler(resolutionHandler, idempotencyStore, log), resolutionHandler.EventTypes()...)
	eventBus.Subscribe(event.NewIdempotentHandler(extractionWriter, idempotencyStore, log), extractionWriter.EventTypes()...)

	// Portfolio metrics: counters fed by domain events, gauges by
	// periodic queries against the book
	portfolioMetrics, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter:    meterProvider.Meter("npl.portfolio"),
		Logger:   log,
		Provider: telemetry.NewGormPortfolioMetricsProvider(db),
	})
	if err != nil {
		log.Fatal("Failed to initialize portfolio metrics", zap.Error(err))
	}
	metricsHandler := event.NewMetricsHandler(portfolioMetrics, log)
	eventBus.Subscribe(metricsHandler, metricsHandler.EventTypes()...)
	portfolioMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
	defer portfolioMetrics.Stop()

	busCtx := context.Background()
	if err := eventBus.Start(busCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Failed to stop event bus", zap.Error(err))
		}
	}()

	// Outbox processor relays persisted events to the bus
	processorConfig := event.DefaultOutboxProcessorConfig()
	processorConfig.BatchSize = cfg.Event.BatchSize
	processorConfig.PollInterval = cfg.Event.PollInterval
	processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
	processorConfig.CleanupRetention = cfg.Event.CleanupRetention
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(busCtx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := outboxProcessor.Stop(stopCtx); err != nil {
				log.Error("Failed to stop outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Nightly report refresh scheduler; stays nil when disabled and the
	// scheduler endpoints report that
	var reportScheduler *scheduler.ReportCronScheduler
	if cfg.Scheduler.Enabled {
		cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Fatal("Invalid scheduler cron schedule",
				zap.String("schedule", cfg.Scheduler.DailyCronSchedule),
				zap.Error(err))
		}
		reportScheduler = scheduler.NewReportCronScheduler(
			scheduler.ReportCronSchedulerConfig{
				Enabled:           cfg.Scheduler.Enabled,
				CronHour:          cronHour,
				CronMinute:        cronMinute,
				DailyCronSchedule: cfg.Scheduler.DailyCronSchedule,
				JobTimeout:        cfg.Scheduler.JobTimeout,
				MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
				RetryAttempts:     cfg.Scheduler.RetryAttempts,
				RetryDelay:        cfg.Scheduler.RetryDelay,
			},
			scheduler.NewReportJobExecutor(reportService, log),
			scheduler.NewSchedulerJobRepository(db),
			log,
		)
		if err := reportScheduler.Start(busCtx); err != nil {
			log.Fatal("Failed to start report scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := reportScheduler.Stop(stopCtx); err != nil {
				log.Error("Failed to stop report scheduler", zap.Error(err))
			}
		}()
		log.Info("Report scheduler started", zap.String("schedule", cfg.Scheduler.DailyCronSchedule))
	}

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	sellerHandler := handler.NewSellerHandler(sellerService)
	tapeHandler := handler.NewTapeImportHandler(tapeImportService)
	tradeHandler := handler.NewTradeHandler(tradeService)
	assetHandler := handler.NewAssetHandler(assetService)
	valuationHandler := handler.NewValuationHandler(valuationService)
	servicingHandler := handler.NewServicingHandler(servicingService)
	trackHandler := handler.NewTrackHandler(trackService)
	documentHandler := handler.NewDocumentHandler(documentService)
	extractionHandler := handler.NewExtractionHandler(extractionService)
	reportHandler := handler.NewReportHandler(reportService, reportExportService, reportScheduler)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler(cfg.App.Env)

	// Gin engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	// Health check outside the authenticated API surface
	engine.GET("/health", healthHandler(database, log))

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Versioned API behind JWT auth
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	// Identity
	authGroup := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authGroup.Use(middleware.AuthRateLimit(authLimiter))
	}
	authGroup.
		POST("/login", authHandler.Login).
		POST("/refresh", authHandler.RefreshToken).
		POST("/logout", authHandler.Logout).
		GET("/me", authHandler.GetCurrentUser).
		PUT("/password", authHandler.ChangePassword).
		POST("/users/:id/force-logout", middleware.RequireRole("admin"), authHandler.ForceLogout)

	identityGroup := router.NewDomainGroup("identity", "/identity")
	identityGroup.Use(middleware.RequireRole("admin"))
	identityGroup.
		POST("/users", userHandler.Create).
		GET("/users", userHandler.List).
		GET("/users/:id", userHandler.GetByID).
		PUT("/users/:id", userHandler.Update).
		PUT("/users/:id/role", userHandler.SetRole).
		POST("/users/:id/reset-password", userHandler.ResetPassword).
		POST("/users/:id/activate", userHandler.Activate).
		POST("/users/:id/deactivate", userHandler.Deactivate).
		DELETE("/users/:id", userHandler.Delete)

	// Acquisition
	sellerGroup := router.NewDomainGroup("sellers", "/sellers")
	sellerGroup.
		POST("", sellerHandler.Create).
		GET("", sellerHandler.List).
		GET("/code/:code", sellerHandler.GetByCode).
		GET("/:id", sellerHandler.GetByID).
		PUT("/:id", sellerHandler.Update).
		POST("/:id/activate", sellerHandler.Activate).
		POST("/:id/deactivate", sellerHandler.Deactivate).
		POST("/:id/block", sellerHandler.Block)

	tradeGroup := router.NewDomainGroup("trading", "/trades")
	tradeGroup.
		POST("", tradeHandler.Create).
		GET("", tradeHandler.List).
		GET("/number/:number", tradeHandler.GetByNumber).
		GET("/:id", tradeHandler.GetByID).
		PUT("/:id", tradeHandler.Update).
		DELETE("/:id", tradeHandler.Delete).
		POST("/:id/diligence", tradeHandler.StartDiligence).
		POST("/:id/bid", tradeHandler.SubmitBid).
		POST("/:id/award", tradeHandler.Award).
		POST("/:id/settle", tradeHandler.Settle).
		POST("/:id/pass", tradeHandler.Pass).
		POST("/:id/cancel", tradeHandler.Cancel).
		POST("/:id/tapes", tapeHandler.Import).
		GET("/:id/tapes", tapeHandler.ListImports).
		GET("/:id/population", tapeHandler.PopulationSummary).
		POST("/:id/servicing", servicingHandler.Import).
		GET("/:id/documents", documentHandler.ListByTrade)

	tapeGroup := router.NewDomainGroup("tapes", "/tapes")
	tapeGroup.
		GET("/:id", tapeHandler.GetImport).
		POST("/rows/:id/reject", tapeHandler.RejectRow)

	// Portfolio
	hubGroup := router.NewDomainGroup("hubs", "/hubs")
	hubGroup.
		GET("/:id", assetHandler.GetHub).
		GET("/:id/asset", assetHandler.GetByHub).
		POST("/:id/valuations", valuationHandler.Add).
		GET("/:id/valuations", valuationHandler.ListByHub).
		GET("/:id/valuations/reconciled", valuationHandler.Reconciled).
		GET("/:id/servicing", servicingHandler.History).
		GET("/:id/servicing/latest", servicingHandler.Latest).
		GET("/:id/servicing/:period", servicingHandler.GetByHubAndPeriod).
		POST("/:id/tracks", trackHandler.Open).
		GET("/:id/tracks", trackHandler.ListByHub).
		GET("/:id/documents", documentHandler.ListByHub).
		GET("/:id/extractions", extractionHandler.ListByHub)

	assetGroup := router.NewDomainGroup("assets", "/assets")
	assetGroup.
		GET("", assetHandler.List).
		GET("/:id", assetHandler.GetByID).
		PUT("/:id/upb", assetHandler.UpdateUPB).
		POST("/:id/liquidate", assetHandler.MarkLiquidated).
		POST("/:id/sell", assetHandler.MarkSold)

	valuationGroup := router.NewDomainGroup("valuations", "/valuations")
	valuationGroup.
		GET("/:id", valuationHandler.GetByID)

	servicingGroup := router.NewDomainGroup("servicing", "/servicing")
	servicingGroup.
		GET("/:period/buckets", servicingHandler.BucketDistribution)

	// Asset management workout tracks
	trackGroup := router.NewDomainGroup("am", "/tracks")
	trackGroup.
		GET("", trackHandler.List).
		GET("/pipeline", trackHandler.Pipeline).
		GET("/:id", trackHandler.GetByID).
		POST("/:id/start", trackHandler.Start).
		POST("/:id/hold", trackHandler.Hold).
		POST("/:id/resume", trackHandler.Resume).
		PUT("/:id/assign", trackHandler.Assign).
		POST("/:id/resolve", trackHandler.Resolve).
		POST("/:id/cancel", trackHandler.Cancel).
		POST("/:id/milestones", trackHandler.AddMilestone).
		POST("/:id/milestones/:milestoneId/reach", trackHandler.ReachMilestone).
		GET("/:id/reo", trackHandler.GetREO).
		POST("/:id/reo/list", trackHandler.ListREO).
		POST("/:id/reo/reduce-price", trackHandler.ReducePrice).
		POST("/:id/reo/contract", trackHandler.AcceptContract).
		POST("/:id/reo/contract-fell", trackHandler.ContractFell).
		POST("/:id/reo/close", trackHandler.CloseREO).
		GET("/:id/foreclosure", trackHandler.GetForeclosure).
		POST("/:id/foreclosure/complaint", trackHandler.FileComplaint).
		POST("/:id/foreclosure/judgment", trackHandler.EnterJudgment).
		POST("/:id/foreclosure/sale", trackHandler.ScheduleSale).
		POST("/:id/foreclosure/postpone", trackHandler.PostponeSale).
		POST("/:id/foreclosure/record-sale", trackHandler.RecordSale).
		GET("/:id/modification", trackHandler.GetModification).
		POST("/:id/modification/trial", trackHandler.StartTrial).
		POST("/:id/modification/trial-payments", trackHandler.RecordTrialPayment).
		POST("/:id/modification/permanent", trackHandler.MakePermanent).
		POST("/:id/modification/break", trackHandler.BreakModification).
		GET("/:id/short-sale", trackHandler.GetShortSale).
		POST("/:id/short-sale/approve", trackHandler.ApproveShortSale).
		POST("/:id/short-sale/close", trackHandler.CloseShortSale).
		GET("/:id/note-sale", trackHandler.GetNoteSale).
		POST("/:id/note-sale/settle", trackHandler.SettleNoteSale)

	// Documents and extraction. Extraction triggers spend vision model
	// quota, so they get their own per-user budget on top of the global
	// limiter.
	extractLimiter := middleware.NewRateLimiter(10, time.Minute)
	extractKey := func(c *gin.Context) string {
		if userID := middleware.GetJWTUserID(c); userID != "" {
			return "extract:" + userID
		}
		return "extract:" + c.ClientIP()
	}

	documentGroup := router.NewDomainGroup("documents", "/documents")
	documentGroup.
		POST("", documentHandler.Register).
		GET("/:id", documentHandler.GetByID).
		DELETE("/:id", documentHandler.Delete).
		POST("/:id/confirm", documentHandler.ConfirmUpload).
		POST("/:id/extract", middleware.RateLimitByKey(extractLimiter, extractKey), extractionHandler.Start).
		GET("/:id/extractions", extractionHandler.ListByDocument)

	extractionGroup := router.NewDomainGroup("extractions", "/extractions")
	extractionGroup.
		GET("/status/:status", extractionHandler.ListByStatus).
		GET("/:id", extractionHandler.GetByID).
		GET("/:id/result", extractionHandler.Result)

	// Reporting
	reportGroup := router.NewDomainGroup("reports", "/reports")
	reportGroup.
		GET("/portfolio-summary", reportHandler.PortfolioSummary).
		GET("/portfolio-summary/export", reportHandler.ExportPortfolioSummary).
		GET("/trade-pipeline", reportHandler.TradePipeline).
		GET("/delinquency", reportHandler.DelinquencyDistribution).
		GET("/track-summary", reportHandler.TrackSummary).
		GET("/valuation-coverage", reportHandler.ValuationCoverage).
		POST("/refresh", reportHandler.Refresh).
		GET("/scheduler", reportHandler.SchedulerStatus).
		POST("/scheduler/run", reportHandler.TriggerSchedulerRun).
		POST("/scheduler/aggregate", reportHandler.TriggerPeriodAggregation)

	// System
	systemGroup := router.NewDomainGroup("system", "/system")
	systemGroup.
		GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)
	outboxGroup := systemGroup.Group("outbox", "/outbox")
	outboxGroup.Use(middleware.RequireRole("admin"))
	outboxGroup.
		GET("/dead", outboxHandler.GetDeadLetterEntries).
		POST("/dead/retry-all", outboxHandler.RetryAllDeadEntries).
		GET("/stats", outboxHandler.GetStats).
		GET("/:id", outboxHandler.GetEntry).
		POST("/:id/retry", outboxHandler.RetryDeadEntry)

	r.Register(authGroup).
		Register(identityGroup).
		Register(sellerGroup).
		Register(tradeGroup).
		Register(tapeGroup).
		Register(hubGroup).
		Register(assetGroup).
		Register(valuationGroup).
		Register(servicingGroup).
		Register(trackGroup).
		Register(documentGroup).
		Register(extractionGroup).
		Register(reportGroup).
		Register(systemGroup)

	r.Setup()

	// Unauthenticated liveness probe
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// healthHandler reports process and database health
func healthHandler(database *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.Ping(); err != nil {
			log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "down",
			})
			return
		}
		resp := gin.H{
			"status":   "healthy",
			"database": "up",
		}
		if stats, err := database.Stats(); err == nil {
			resp["db_pool"] = gin.H{
				"open":    stats.OpenConnections,
				"in_use":  stats.InUse,
				"idle":    stats.Idle,
				"max":     stats.MaxOpenConnections,
				"waiting": stats.WaitCount,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
