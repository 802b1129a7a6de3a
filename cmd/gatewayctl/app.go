package main

import (
	"context"
	"fmt"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	merchantUseCase "github.com/amirhossein-jamali/payment-gateway/internal/domain/usecase/merchant"
	transactionUseCase "github.com/amirhossein-jamali/payment-gateway/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/event"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/quota"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/random"
	timeProvider "github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/config"
)

// app holds the components a command needs. Commands never start the HTTP
// server or the background workers.
type app struct {
	cfg    *config.Config
	logger coreport.Logger
	clock  coreport.TimeProvider
	db     *database.Manager
	uow    persistence.UnitOfWork
	events gateway.EventPublisher
}

func newApp(ctx context.Context, configFile string) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	log, err := logger.NewZapLogger(logger.Options{
		Level:  coreport.ParseLogLevel(cfg.Logger.Level),
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	clock, err := timeProvider.NewRealTimeProvider(cfg.Transaction.TimeZone)
	if err != nil {
		return nil, err
	}

	manager := database.NewManager(database.FromAppConfig(cfg), log, clock)
	if _, err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	events, err := event.NewPublisher(cfg.Kafka, log)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: log,
		clock:  clock,
		db:     manager,
		uow:    manager.CreateUnitOfWork(),
		events: events,
	}, nil
}

func (a *app) close() {
	_ = a.events.Close()
	_ = a.db.Close()
	_ = a.logger.Flush()
}

func (a *app) ledger() *transactionUseCase.Ledger {
	disambiguator := transactionUseCase.NewAmountDisambiguator(random.NewSource(), transactionUseCase.DisambiguatorConfig{
		UniqueMin:   a.cfg.Transaction.UniqueMin,
		UniqueMax:   a.cfg.Transaction.UniqueMax,
		MaxAttempts: a.cfg.Transaction.MaxAttempts,
	})
	return transactionUseCase.NewLedger(a.uow, disambiguator, a.events, a.clock, a.logger,
		transactionUseCase.LedgerConfig{TTL: a.cfg.Transaction.TTL})
}

func (a *app) reconciler() *transactionUseCase.SummaryReconciler {
	return transactionUseCase.NewSummaryReconciler(a.uow, a.clock, a.logger, transactionUseCase.ReconcilerConfig{
		Interval: a.cfg.Reconciler.Interval,
		AutoFix:  a.cfg.Reconciler.AutoFix,
	})
}

func (a *app) merchants() *merchantUseCase.UseCase {
	return merchantUseCase.NewMerchantUseCase(a.uow, quota.NoopLimiter{}, nil, a.clock, a.logger, merchantUseCase.Config{
		DailyLimit: a.cfg.Transaction.DailyRequestLimit,
	})
}
