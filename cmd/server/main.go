package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	harvestapp "github.com/pentol/backend/internal/application/harvest"
	identityapp "github.com/pentol/backend/internal/application/identity"
	organizationapp "github.com/pentol/backend/internal/application/organization"
	"github.com/pentol/backend/internal/application/policy"
	reportapp "github.com/pentol/backend/internal/application/report"
	spbapp "github.com/pentol/backend/internal/application/spb"
	"github.com/pentol/backend/internal/infrastructure/auth"
	"github.com/pentol/backend/internal/infrastructure/cache"
	"github.com/pentol/backend/internal/infrastructure/config"
	"github.com/pentol/backend/internal/infrastructure/export"
	"github.com/pentol/backend/internal/infrastructure/imaging"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/pentol/backend/internal/infrastructure/persistence"
	"github.com/pentol/backend/internal/infrastructure/printing"
	"github.com/pentol/backend/internal/infrastructure/storage"
	"github.com/pentol/backend/internal/infrastructure/telemetry"
	"github.com/pentol/backend/internal/interfaces/http/handler"
	"github.com/pentol/backend/internal/interfaces/http/middleware"
	"github.com/pentol/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// exports per user per minute
const exportRequestsPerMinute = 10

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewFromConfig(cfg.App, cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting PENTOL backend",
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Timezone),
	)

	ctx := context.Background()
	loc := cfg.App.Location()
	isProduction := cfg.App.Env == "production"

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		_ = tracerProvider.Shutdown(context.Background())
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		_ = meterProvider.Shutdown(context.Background())
	}()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		_ = logsProvider.Shutdown(context.Background())
	}()
	log = logsProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPass,
		ProfileTypes:      cfg.Telemetry.ProfilingTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer func() {
		_ = profiler.Stop()
	}()
	if cfg.Telemetry.SpanProfilesEnabled {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected")

	// Repositories
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	harvestRepo := persistence.NewGormHarvestRepository(db.DB)
	spbRepo := persistence.NewGormSPBRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Timeouts and retries. Exports render for longer than a query and are
	// not retried.
	queryPolicy := policy.New(cfg.Harvest.QueryTimeout, cfg.Retry, log)
	exportPolicy := policy.New(cfg.Export.RenderTimeout, config.RetryConfig{MaxAttempts: 1}, log)

	harvestMetrics, err := telemetry.NewHarvestMetrics(meterProvider.Meter("pentol/harvest"))
	if err != nil {
		log.Fatal("Failed to register harvest metrics", zap.Error(err))
	}

	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Export.RenderTimeout,
		RemoteURL:      cfg.Export.ChromeRemoteURL,
		ExecPath:       cfg.Export.ChromePath,
		NoSandbox:      true,
		MaxTabs:        cfg.Export.MaxConcurrentRenders,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		_ = renderer.Close()
	}()

	objectStorage, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	exportOpts, err := exportSinkOptions(cfg, objectStorage, isProduction, log)
	if err != nil {
		log.Fatal("Failed to initialize export sink", zap.Error(err))
	}
	exportOpts = append(exportOpts, reportapp.WithMaxRows(cfg.Harvest.ExportMaxRows))

	// Application services
	profileService := identityapp.NewProfileService(profileRepo, queryPolicy, log)
	lookupService := organizationapp.NewLookupService(orgRepo, queryPolicy, log)

	var inputOpts []harvestapp.InputServiceOption
	if photos := photoStorage(objectStorage, isProduction, log); photos != nil {
		inputOpts = append(inputOpts, harvestapp.WithPhotos(imaging.NewProcessor(cfg.Photo), photos))
	}
	inputService := harvestapp.NewInputService(harvestRepo, queryPolicy, loc, log, inputOpts...)
	inputService.SetMetrics(harvestMetrics)

	approvalService := harvestapp.NewApprovalService(harvestRepo, queryPolicy, cfg.Harvest.ReportMaxPageSize, log)
	approvalService.SetMetrics(harvestMetrics)

	spbService := spbapp.NewSpbService(spbRepo, harvestRepo, queryPolicy, loc, cfg.Harvest.ReportMaxPageSize, log)
	spbService.SetMetrics(harvestMetrics)

	kpiService := reportapp.NewKPIService(
		reportRepo,
		orgRepo,
		decimal.NewFromFloat(cfg.Harvest.DailyTargetKgPerHa),
		reportapp.TargetsFromConfig(cfg.KPI),
		queryPolicy,
		loc,
		log,
	)
	reportService := reportapp.NewReportService(reportRepo, kpiService, queryPolicy, cfg.Harvest.ReportMaxPageSize, loc, log)
	exportService := reportapp.NewExportService(
		reportRepo,
		orgRepo,
		export.NewBuilder(renderer, log),
		exportPolicy,
		cfg.Harvest.ExportBatchSize,
		loc,
		log,
		exportOpts...,
	)
	exportService.SetMetrics(harvestMetrics)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!isProduction),
	).CreateStore(cfg.Idempotency.Backend)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = isProduction

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Logger:        log,
		}),
		middleware.SecureWithConfig(securityCfg),
		middleware.CORSWithConfig(corsCfg),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}
	exportLimiter := middleware.NewRateLimiter(exportRequestsPerMinute, time.Minute)
	defer exportLimiter.Stop()

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Logger = log

	router.RegisterAPI(engine, router.Handlers{
		System:   handler.NewSystemHandler(db, cfg.App.Name, version),
		Identity: handler.NewIdentityHandler(profileService, lookupService),
		Harvest:  handler.NewHarvestHandler(inputService, approvalService),
		Spb:      handler.NewSpbHandler(spbService),
		Report:   handler.NewReportHandler(kpiService, reportService, exportService),
	}, router.Guards{
		Authenticate:    middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
		ResolveProfile:  middleware.ResolveProfile(profileService, log),
		SpanAttributes:  middleware.SpanRequestAttributes(),
		Idempotency:     middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, log),
		BodyLimit:       middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		PhotoBodyLimit:  middleware.BodyLimit(cfg.Photo.MaxBytes),
		ExportRateLimit: middleware.RateLimitByKey(exportLimiter, middleware.ClientKey),
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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := meterProvider.ForceFlush(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage connects the S3 bucket when storage is enabled
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage.S3ObjectStorage, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", s3.GetBucket()))
	return s3, nil
}

// exportSinkOptions picks where finished exports are published. With no
// sink the file is streamed back in the response.
func exportSinkOptions(
	cfg *config.Config,
	s3 *storage.S3ObjectStorage,
	isProduction bool,
	log *zap.Logger,
) ([]reportapp.ExportServiceOption, error) {
	switch cfg.Export.Sink {
	case "s3":
		return []reportapp.ExportServiceOption{reportapp.WithSink(s3)}, nil
	case "sftp":
		sink, err := storage.NewSFTPSink(&cfg.SFTP, !isProduction, log)
		if err != nil {
			return nil, err
		}
		return []reportapp.ExportServiceOption{reportapp.WithSink(sink)}, nil
	default:
		return nil, nil
	}
}

// photoStorage returns where harvest photos go. Outside production an
// in-memory store stands in for a missing bucket; in production uploads stay
// disabled.
func photoStorage(s3 *storage.S3ObjectStorage, isProduction bool, log *zap.Logger) harvestapp.PhotoStorage {
	switch {
	case s3 != nil:
		return s3
	case isProduction:
		log.Warn("Object storage disabled, photo upload unavailable")
		return nil
	default:
		log.Warn("Object storage disabled, keeping photos in memory")
		return storage.NewMemoryObjectStorage()
	}
}
