package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/repository"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys
const txKey contextKey = "tx"

// UnitOfWorkOptions tunes transactions started by the unit of work
type UnitOfWorkOptions struct {
	Retry     RetryConfig
	Isolation sql.IsolationLevel
}

// UnitOfWork implements the unit of work pattern for database transactions
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	options      UnitOfWorkOptions
	errorMapper  *ErrorMapper
	metrics      *MetricsCollector
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(
	db *gorm.DB,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
	options UnitOfWorkOptions,
	metrics *MetricsCollector,
) persistence.UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		options:      options,
		errorMapper:  NewErrorMapper(),
		metrics:      metrics,
	}
}

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	var opts []*sql.TxOptions
	if u.options.Isolation != sql.LevelDefault {
		opts = append(opts, &sql.TxOptions{Isolation: u.options.Isolation})
	}

	tx := u.db.WithContext(ctx).Begin(opts...)
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, u.errorMapper.MapError(tx.Error, "begin transaction")
	}

	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return u.errorMapper.MapError(err, "commit transaction")
	}
	return nil
}

// Rollback rolls back the current transaction
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	err := tx.Rollback().Error
	if err != nil && strings.Contains(err.Error(), "already been committed or rolled back") {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Do runs fn in a transaction and replays it on transient failures.
// A context already inside a transaction joins it.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	return u.metrics.Measure(ctx, "unit of work", func() error {
		return RetryOnTransientError(ctx, u.options.Retry, func() error {
			return u.runOnce(ctx, fn)
		}, u.logger)
	})
}

func (u *UnitOfWork) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = u.Rollback(txCtx)
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			u.logger.Warn("Rollback after failed unit of work also failed", map[string]any{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}
	return u.Commit(txCtx)
}

// GetMerchantRepository returns a merchant repository in the current transaction
func (u *UnitOfWork) GetMerchantRepository(ctx context.Context) persistence.MerchantRepository {
	return repository.NewMerchantRepository(u.getDbFromContext(ctx), u.timeProvider, u.logger)
}

// GetPaymentMethodRepository returns a payment method repository in the current transaction
func (u *UnitOfWork) GetPaymentMethodRepository(ctx context.Context) persistence.PaymentMethodRepository {
	return repository.NewPaymentMethodRepository(u.getDbFromContext(ctx), u.timeProvider, u.logger)
}

// GetTransactionRepository returns a transaction repository in the current transaction
func (u *UnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	return repository.NewTransactionRepository(u.getDbFromContext(ctx), u.logger)
}

// GetSummaryRepository returns a summary repository in the current transaction
func (u *UnitOfWork) GetSummaryRepository(ctx context.Context) persistence.SummaryRepository {
	return repository.NewSummaryRepository(u.getDbFromContext(ctx), u.logger)
}

// GetRequestLogRepository returns a request log repository in the current transaction
func (u *UnitOfWork) GetRequestLogRepository(ctx context.Context) persistence.RequestLogRepository {
	return repository.NewRequestLogRepository(u.getDbFromContext(ctx), u.logger)
}

// GetLeaseLockRepository returns a lease lock repository in the current transaction
func (u *UnitOfWork) GetLeaseLockRepository(ctx context.Context) persistence.LeaseLockRepository {
	return repository.NewLeaseLockRepository(u.getDbFromContext(ctx), u.timeProvider, u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if ok && tx != nil {
		return tx
	}
	return u.db.WithContext(ctx)
}
