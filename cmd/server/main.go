package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	actionqueueapp "github.com/packops/backend/internal/application/actionqueue"
	billingapp "github.com/packops/backend/internal/application/billing"
	identityapp "github.com/packops/backend/internal/application/identity"
	projectapp "github.com/packops/backend/internal/application/project"
	proofingapp "github.com/packops/backend/internal/application/proofing"
	shippingapp "github.com/packops/backend/internal/application/shipping"
	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/infrastructure/auth"
	"github.com/packops/backend/internal/infrastructure/cache"
	"github.com/packops/backend/internal/infrastructure/config"
	"github.com/packops/backend/internal/infrastructure/logger"
	"github.com/packops/backend/internal/infrastructure/persistence"
	"github.com/packops/backend/internal/infrastructure/scheduler"
	"github.com/packops/backend/internal/infrastructure/telemetry"
	"github.com/packops/backend/internal/interfaces/http/handler"
	"github.com/packops/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			PackOps Backend API
//	@version		1.0
//	@description	Business operations platform for packaging production: projects, proofs, invoices, shipments.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting PackOps Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers come up first so the database plugin and the
	// HTTP middleware can attach to them.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled: true,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Error("Failed to register database tracing", zap.Error(err))
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var blacklist auth.TokenBlacklist
	var identityCache cache.IdentityCache
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, falling back to in-memory token blacklist and identity cache",
			zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
		identityCache = cache.NewInMemoryIdentityCache()
	} else {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		identityCache = cache.NewRedisIdentityCache(redisClient)
		log.Info("Redis connected", zap.String("host", cfg.Redis.Host))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	principalRepo := persistence.NewGormPrincipalRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	invoiceEventRepo := persistence.NewGormInvoiceEventRepository(db.DB)
	assetRepo := persistence.NewGormFileAssetRepository(db.DB)
	approvalEventRepo := persistence.NewGormApprovalEventRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	shipmentEventRepo := persistence.NewGormShipmentEventRepository(db.DB)
	snapshotRepo := persistence.NewGormQueueSnapshotRepository(db.DB)

	// Application services
	evaluator := authz.NewEvaluator()
	resolver := identityapp.NewResolverService(principalRepo, orgRepo, identityCache, log)
	authService := identityapp.NewAuthService(principalRepo, resolver, jwtService, blacklist,
		identityapp.DefaultAuthServiceConfig(), log)
	orgService := identityapp.NewOrganizationService(orgRepo, principalRepo, resolver, evaluator, log)
	projectService := projectapp.NewService(projectRepo, orgRepo, evaluator, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, invoiceEventRepo, projectRepo, evaluator, log)
	proofService := proofingapp.NewService(assetRepo, approvalEventRepo, projectRepo, evaluator, log)
	shipmentService := shippingapp.NewService(shipmentRepo, shipmentEventRepo, projectRepo, evaluator, log)
	queueService := actionqueueapp.NewService(snapshotRepo, evaluator, log)

	var opsMetrics *telemetry.OpsMetrics
	if meterProvider.IsEnabled() {
		opsMetrics, err = telemetry.NewOpsMetrics(telemetry.OpsMetricsConfig{
			Meter:         meterProvider.Meter("packops.operations"),
			Logger:        log,
			QueueProvider: queueService,
		})
		if err != nil {
			log.Error("Failed to initialize operational metrics", zap.Error(err))
			opsMetrics = nil
		} else {
			opsMetrics.StartPeriodicCollection(ctx, 5*time.Minute)
			defer opsMetrics.Stop()
		}
	}

	var trigger *scheduler.Trigger
	var sweepScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		schedCfg := scheduler.DefaultConfig()
		schedCfg.JobTimeout = cfg.Scheduler.JobTimeout
		executor := scheduler.NewSweepExecutor(invoiceService, shipmentService, log)
		sweepScheduler = scheduler.NewScheduler(schedCfg, executor, log)
		if err := sweepScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}

		trigger, err = scheduler.NewTrigger(scheduler.TriggerConfig{
			OverdueSweepSchedule:  cfg.Scheduler.OverdueSweepSchedule,
			DeliveryCheckInterval: cfg.Scheduler.DeliveryCheckInterval,
		}, sweepScheduler, log)
		if err != nil {
			log.Fatal("Invalid sweep schedule", zap.Error(err))
		}
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start sweep trigger", zap.Error(err))
		}
		log.Info("Background sweeps started",
			zap.String("overdue_schedule", cfg.Scheduler.OverdueSweepSchedule),
			zap.Duration("delivery_interval", cfg.Scheduler.DeliveryCheckInterval),
		)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	systemHandler := handler.NewSystemHandler(db.DB, invoiceService, shipmentService)
	r := router.NewRouter(engine, router.Config{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		MeterProvider:  meterProvider,
		Logger:         log,
		SystemHandler:  systemHandler,
		AllowOrigins:   cfg.HTTP.CORSAllowOrigins,
		RateLimit:      300,
		RateWindow:     time.Minute,
		MaxBodyBytes:   cfg.HTTP.MaxBodySize,
		TracingEnabled: cfg.Telemetry.Enabled,
	})
	r.Register(handler.NewAuthHandler(authService))
	r.Register(handler.NewOrganizationHandler(orgService))
	r.Register(handler.NewProjectHandler(projectService))
	r.Register(handler.NewInvoiceHandler(invoiceService, opsMetrics))
	r.Register(handler.NewProofHandler(proofService, opsMetrics))
	r.Register(handler.NewShipmentHandler(shipmentService, opsMetrics))
	r.Register(handler.NewActionQueueHandler(queueService))
	r.Register(systemHandler)
	r.Setup()

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if trigger != nil {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Error("Sweep trigger shutdown failed", zap.Error(err))
		}
	}
	if sweepScheduler != nil {
		if err := sweepScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler shutdown failed", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
