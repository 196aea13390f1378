package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	financeapp "github.com/shopdesk/backend/internal/application/finance"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/infrastructure/auth"
	"github.com/shopdesk/backend/internal/infrastructure/config"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopdesk/backend/internal/interfaces/http/handler"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/shopdesk/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ShopDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Tracing
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
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
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Metrics
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
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
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Log export: from here on every entry is teed to the collector as well
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
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
		if err := lp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	log = telemetry.BridgeLogger(log, lp, cfg.Telemetry.ServiceName)

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), 200*time.Millisecond)
	db, err := persistence.NewDatabase(ctx, &cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if err := db.Use(telemetry.NewDBTracingPlugin(dbTracing, log)); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Identity
	verifier, err := newVerifier(ctx, cfg.Identity)
	if err != nil {
		log.Fatal("Failed to initialize credential verifier", zap.Error(err))
	}
	profiles, err := auth.NewProfileClient(auth.ProfileClientConfig{
		APIURL:    cfg.Identity.APIURL,
		SecretKey: cfg.Identity.SecretKey,
		Timeout:   cfg.Identity.ProviderTimeout,
	})
	if err != nil {
		log.Fatal("Failed to initialize identity provider client", zap.Error(err))
	}
	revocations, closeRevocations := newRevocations(ctx, cfg.Redis, log)
	defer closeRevocations()

	resolver := identityapp.NewResolver(profiles, cfg.Identity.ProviderTimeout, log)
	authenticator := identityapp.NewAuthenticator(verifier, resolver, log,
		identityapp.WithRevocations(revocations),
		identityapp.WithVerifyTimeout(cfg.Identity.ProviderTimeout),
	)

	// Finance
	ledgerMetrics, err := telemetry.NewLedgerMetrics(mp.Meter("ledger"))
	if err != nil {
		log.Fatal("Failed to initialize ledger metrics", zap.Error(err))
	}
	ledgerWriter := financeapp.NewLedgerWriter(
		persistence.NewGormLedgerUnitOfWork(db.DB),
		financeapp.LedgerPolicy{
			StrictCategoryLookup: cfg.Ledger.StrictCategoryLookup,
			TransactionTimeout:   cfg.Ledger.TransactionTimeout,
		},
		log,
		financeapp.WithLedgerMetrics(ledgerMetrics),
	)
	ledgerQueries := financeapp.NewLedgerQueryService(
		persistence.NewGormExpenseRepository(db.DB),
		persistence.NewGormCashFlowRepository(db.DB),
		log,
	)
	categoryService := financeapp.NewCategoryService(persistence.NewGormExpenseCategoryRepository(db.DB), log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tp.IsEnabled(),
		}),
		middleware.HTTPMetrics(mp.Meter("http.server")),
		logger.GinMiddleware(log),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	handler.RegisterHealthRoutes(engine, handler.NewHealthHandler(db))

	gate := middleware.AuthGate(middleware.AuthGateConfig{
		Authenticator: authenticator,
		SessionCookie: cfg.Identity.SessionCookie,
		Logger:        log,
		Meter:         mp.Meter("auth"),
	})
	financeHandler := handler.NewFinanceHandler(ledgerWriter, ledgerQueries, categoryService)
	identityHandler := handler.NewIdentityHandler(authenticator, cfg.Identity.SessionCookie)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(gate, middleware.SpanAttributes()),
		router.WithLogger(log),
	)
	r.Register(handler.FinanceRoutes(financeHandler)).
		Register(handler.IdentityRoutes(identityHandler))
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newVerifier builds the credential verifier for the configured mode
func newVerifier(ctx context.Context, cfg config.IdentityConfig) (identity.Verifier, error) {
	switch cfg.Mode {
	case config.IdentityModeOIDC:
		return auth.NewOIDCVerifier(ctx, auth.OIDCVerifierConfig{
			IssuerURL:         cfg.IssuerURL,
			JWKSURL:           cfg.JWKSURL,
			Audience:          cfg.Audience,
			AuthorizedParties: cfg.AuthorizedParties,
		})
	case config.IdentityModeSharedSecret:
		return auth.NewSharedSecretVerifier(cfg.JWTSecret, cfg.IssuerURL, cfg.AuthorizedParties)
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", cfg.Mode)
	}
}

// newRevocations connects the Redis revocation list when enabled and
// falls back to the process-local list otherwise.
func newRevocations(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (identityapp.TokenRevocations, func()) {
	if !cfg.Enabled {
		log.Info("Redis disabled, token revocations are process-local")
		return auth.NewInMemoryTokenRevocations(), func() {}
	}

	store, err := auth.NewRedisTokenRevocations(ctx, auth.RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, token revocations are process-local", zap.Error(err))
		return auth.NewInMemoryTokenRevocations(), func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}
}
