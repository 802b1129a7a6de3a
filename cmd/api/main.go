package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	merchantUseCase "github.com/amirhossein-jamali/payment-gateway/internal/domain/usecase/merchant"
	transactionUseCase "github.com/amirhossein-jamali/payment-gateway/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/event"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/linkcodec"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/lookup"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/notifier"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/qris"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/quota"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/random"
	timeProvider "github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger, err := logger.NewZapLogger(logger.Options{
		Production: cfg.IsProduction(),
		Level:      coreport.ParseLogLevel(cfg.Logger.Level),
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		CallerInfo: cfg.Logger.CallerInfo,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Flush() }()

	// Business clock, fixes day and month boundaries of the summaries
	tp, err := timeProvider.NewRealTimeProvider(cfg.Transaction.TimeZone)
	if err != nil {
		log.Fatalf("Failed to load time zone: %v", err)
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to the database
	dbManager := database.NewManager(database.FromAppConfig(cfg), appLogger, tp)
	if _, err := dbManager.Connect(rootCtx); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.Migrate(rootCtx); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	uow := dbManager.CreateUnitOfWork()

	links, err := linkcodec.NewAESCodec(cfg.Link.SecretKey)
	if err != nil {
		appLogger.Error("Invalid payment link key", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	publisher, err := event.NewPublisher(cfg.Kafka, appLogger)
	if err != nil {
		appLogger.Error("Failed to create event publisher", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = publisher.Close() }()

	limiter, redisClient := newQuotaLimiter(rootCtx, cfg, tp, appLogger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Upstream HTTP clients
	qrClient := &http.Client{Timeout: cfg.QRIS.Timeout}
	lookupClient := &http.Client{Timeout: cfg.Lookup.Timeout}
	telegramClient := &http.Client{Timeout: cfg.Telegram.Timeout}

	notifiers := []gateway.PaymentNotifier{
		notifier.NewTelegramNotifier(cfg.Telegram.APIBase, telegramClient, tp),
	}
	if email := notifier.NewEmailNotifier(cfg.SMTP, tp); email != nil {
		notifiers = append(notifiers, email)
	}

	// Initialize use cases
	merchantService := merchantUseCase.NewMerchantUseCase(
		uow,
		limiter,
		lookup.NewClient(cfg.Lookup.APIURL, cfg.Lookup.APIKey, lookupClient),
		tp,
		appLogger,
		merchantUseCase.Config{
			LookupTimeout: cfg.Lookup.Timeout,
			DailyLimit:    cfg.Transaction.DailyRequestLimit,
		},
	)

	disambiguator := transactionUseCase.NewAmountDisambiguator(random.NewSource(), transactionUseCase.DisambiguatorConfig{
		UniqueMin:   cfg.Transaction.UniqueMin,
		UniqueMax:   cfg.Transaction.UniqueMax,
		MaxAttempts: cfg.Transaction.MaxAttempts,
	})
	ledger := transactionUseCase.NewLedger(uow, disambiguator, publisher, tp, appLogger, transactionUseCase.LedgerConfig{
		TTL: cfg.Transaction.TTL,
	})
	dispatcher := transactionUseCase.NewNotificationDispatcher(
		tp, appLogger, coreport.Duration(cfg.Transaction.NotifyTimeout), notifiers...,
	)
	matcher := transactionUseCase.NewNotificationMatcher(uow, ledger, dispatcher, appLogger)
	paymentService := transactionUseCase.NewPaymentService(
		uow,
		ledger,
		matcher,
		transactionUseCase.NewTransactionManager(appLogger, cfg.Transaction.QueueSize),
		links,
		qris.NewGenerator(cfg.QRIS.APIURL, qrClient),
		qris.NewUploader(cfg.QRIS.CDNUploadURL, qrClient),
		tp,
		appLogger,
		transactionUseCase.ServiceConfig{
			PublicBaseURL:   cfg.Link.PublicBaseURL,
			UpstreamTimeout: cfg.QRIS.Timeout,
			CreateTimeout:   cfg.Transaction.CreateTimeout,
		},
	)

	if cfg.Seed.Enabled {
		if err := migration.CreateDefaultMerchants(rootCtx, merchantService, cfg.Seed.DemoAPIKey, appLogger); err != nil {
			appLogger.Error("Failed to create demo merchant", map[string]any{
				"error": err.Error(),
			})
		}
	}

	// Background workers
	var workers sync.WaitGroup
	if cfg.Reaper.Enabled {
		reaper := transactionUseCase.NewExpiryReaper(uow, ledger, tp, appLogger, transactionUseCase.ReaperConfig{
			Interval:  cfg.Reaper.Interval,
			BatchSize: cfg.Reaper.BatchSize,
			LeaseTTL:  cfg.Reaper.LeaseTTL,
			Owner:     instanceName(),
		})
		workers.Add(1)
		go func() {
			defer workers.Done()
			reaper.Run(rootCtx)
		}()
	}
	if cfg.Reconciler.Enabled {
		reconciler := transactionUseCase.NewSummaryReconciler(uow, tp, appLogger, transactionUseCase.ReconcilerConfig{
			Interval: cfg.Reconciler.Interval,
			AutoFix:  cfg.Reconciler.AutoFix,
		})
		workers.Add(1)
		go func() {
			defer workers.Done()
			reconciler.Run(rootCtx)
		}()
	}

	// Initialize Gin router
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp)
	routes.SetupRoutes(router, routes.Handlers{
		Payment: handler.NewPaymentHandler(paymentService, merchantService, appLogger),
		Member:  handler.NewMemberHandler(paymentService, merchantService, appLogger),
		Tools:   handler.NewToolsHandler(merchantService, appLogger),
		Health:  handler.NewHealthHandler(dbManager),
	}, merchantService, tp, appLogger)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr": server.Addr,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	// Drain queued creates before the database goes away
	appLogger.Info("Shutting down transaction manager...", nil)
	paymentService.Shutdown()

	stop()
	workers.Wait()

	appLogger.Info("Server exited gracefully", nil)
}

// newQuotaLimiter returns the Redis limiter when enabled. An unreachable
// Redis at startup falls back to no quota rather than blocking the gateway.
func newQuotaLimiter(
	ctx context.Context,
	cfg *config.Config,
	tp coreport.TimeProvider,
	appLogger coreport.Logger,
) (gateway.QuotaLimiter, *redis.Client) {
	if !cfg.Redis.Enabled {
		return quota.NoopLimiter{}, nil
	}
	client, err := quota.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis unavailable, request quota disabled", map[string]any{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
		return quota.NoopLimiter{}, nil
	}
	return quota.NewRedisLimiter(client, tp), client
}

func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "gateway"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// validateConfig runs the config checks and warns about weak production settings
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.IsProduction() {
		var warnings []string

		switch strings.ToLower(cfg.Database.SSLMode) {
		case "require", "verify-ca", "verify-full":
		default:
			warnings = append(warnings, "database.sslMode should be 'require', 'verify-ca' or 'verify-full' in production")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}
		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}
		if cfg.Seed.Enabled {
			warnings = append(warnings, "seed.enabled creates a demo merchant")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential security issues in production configuration: %v", warnings)
		}
	}

	return nil
}
