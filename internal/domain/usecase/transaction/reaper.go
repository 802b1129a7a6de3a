package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
)

// ReaperLockName is the lease shared by all reaper instances
const ReaperLockName = "expiry-reaper"

// Reaper defaults
const (
	DefaultReaperInterval = 30 * time.Second
	DefaultReaperBatch    = 200
	DefaultReaperLease    = 2 * time.Minute
)

// ReaperConfig configures the expiry sweep
type ReaperConfig struct {
	Interval  time.Duration
	BatchSize int
	LeaseTTL  time.Duration
	Owner     string // lease owner, usually host name plus pid
}

// ExpiryReaper fails pending transactions whose payment window passed.
// Expiry times are persisted, so a restart only delays the next sweep.
type ExpiryReaper struct {
	uow          persistence.UnitOfWork
	ledger       *Ledger
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	interval     time.Duration
	batch        int
	leaseTTL     time.Duration
	owner        string
}

// NewExpiryReaper creates a reaper, filling zero config values with defaults
func NewExpiryReaper(
	uow persistence.UnitOfWork,
	ledger *Ledger,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg ReaperConfig,
) *ExpiryReaper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReaperInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultReaperBatch
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = DefaultReaperLease
	}
	if cfg.Owner == "" {
		cfg.Owner = "reaper"
	}
	return &ExpiryReaper{
		uow:          uow,
		ledger:       ledger,
		timeProvider: timeProvider,
		logger:       logger.Named("reaper"),
		interval:     cfg.Interval,
		batch:        cfg.BatchSize,
		leaseTTL:     cfg.LeaseTTL,
		owner:        cfg.Owner,
	}
}

// Sweep fails one batch of expired pending transactions and returns how many
// it changed. Losing the lease to another instance is not an error.
func (r *ExpiryReaper) Sweep(ctx context.Context) (int, error) {
	locks := r.uow.GetLeaseLockRepository(ctx)
	if err := locks.AcquireLock(ctx, ReaperLockName, r.owner, r.leaseTTL); err != nil {
		if errors.Is(err, errs.ErrResourceLocked) {
			r.logger.Debug("Reaper lease held elsewhere, skipping sweep", map[string]any{
				"owner": r.owner,
			})
			return 0, nil
		}
		return 0, err
	}
	defer func() {
		if err := locks.ReleaseLock(context.WithoutCancel(ctx), ReaperLockName, r.owner); err != nil {
			r.logger.Warn("Failed to release reaper lease", map[string]any{"error": err.Error()})
		}
	}()

	expired, err := r.uow.GetTransactionRepository(ctx).ListExpiredPending(ctx, r.timeProvider.Now(), r.batch)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, tx := range expired {
		if ctx.Err() != nil {
			break
		}
		result, err := r.ledger.MarkFailed(ctx, tx.MerchantID, tx.TransactionID, entity.SourceExpiry)
		if err != nil {
			r.logger.Error("Failed to expire transaction", map[string]any{
				"merchant_id":    tx.MerchantID,
				"transaction_id": tx.TransactionID,
				"error":          err.Error(),
			})
			continue
		}
		if result.Changed {
			failed++
		}
	}

	if len(expired) > 0 {
		r.logger.Info("Expiry sweep finished", map[string]any{
			"candidates": len(expired),
			"expired":    failed,
		})
	}
	return failed, nil
}

// Run sweeps on every tick until ctx is cancelled
func (r *ExpiryReaper) Run(ctx context.Context) {
	ticker := r.timeProvider.NewTicker(coreport.Duration(r.interval))
	defer ticker.Stop()

	r.logger.Info("Expiry reaper started", map[string]any{
		"interval": r.interval.String(),
		"batch":    r.batch,
	})

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Expiry reaper stopped", nil)
			return
		case <-ticker.C():
			if _, err := r.Sweep(ctx); err != nil {
				r.logger.Error("Expiry sweep failed", map[string]any{"error": err.Error()})
			}
			if removed, err := r.uow.GetLeaseLockRepository(ctx).CleanupExpiredLocks(ctx); err == nil && removed > 0 {
				r.logger.Debug("Removed expired leases", map[string]any{"count": removed})
			}
		}
	}
}
