package transaction

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
)

// createWriteAttempts is the first write plus one redraw after a post-write collision
const createWriteAttempts = 2

// PrepareFunc fills fields of a new transaction before it is written, such as
// the payment URL or a QR image. It runs outside any database transaction.
type PrepareFunc func(ctx context.Context, tx *entity.Transaction) error

// FinalizeResult is the outcome of a status transition request
type FinalizeResult struct {
	Transaction *entity.Transaction
	Changed     bool // false when the transaction was already terminal
}

// LedgerConfig holds ledger settings
type LedgerConfig struct {
	TTL time.Duration // payment window, DefaultTransactionTTL when zero
}

// Ledger is the only writer of transactions and merchant summaries.
// Every status change is a conditional update guarded by the pending status,
// applied together with the summary change in one unit of work.
type Ledger struct {
	uow           persistence.UnitOfWork
	disambiguator *AmountDisambiguator
	idempotency   *IdempotencyHandler
	events        gateway.EventPublisher
	timeProvider  coreport.TimeProvider
	logger        coreport.Logger
	ttl           time.Duration
	newID         func() (string, error)
}

// NewLedger creates a new ledger. events may be nil.
func NewLedger(
	uow persistence.UnitOfWork,
	disambiguator *AmountDisambiguator,
	events gateway.EventPublisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg LedgerConfig,
) *Ledger {
	if cfg.TTL <= 0 {
		cfg.TTL = entity.DefaultTransactionTTL
	}
	return &Ledger{
		uow:           uow,
		disambiguator: disambiguator,
		idempotency:   NewIdempotencyHandler(uow),
		events:        events,
		timeProvider:  timeProvider,
		logger:        logger.Named("ledger"),
		ttl:           cfg.TTL,
		newID:         entity.NewTransactionID,
	}
}

// Create appends a pending transaction with a unique amount and counts it in the summary
func (l *Ledger) Create(
	ctx context.Context,
	merchantID uint64,
	method *entity.PaymentMethod,
	base int64,
	description string,
	prepare PrepareFunc,
) (*entity.Transaction, error) {
	if err := method.CheckAmount(base); err != nil {
		return nil, err
	}

	pending, err := l.uow.GetTransactionRepository(ctx).PendingAmounts(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	taken := amountSet(pending)

	for attempt := 1; attempt <= createWriteAttempts; attempt++ {
		quote, err := l.disambiguator.Quote(merchantID, method, base, taken)
		if err != nil {
			l.logger.Error("Unique amount allocation exhausted", map[string]any{
				"merchant_id": merchantID,
				"base_amount": base,
				"pending":     len(taken),
			})
			return nil, err
		}

		transactionID, err := l.newID()
		if err != nil {
			return nil, err
		}

		tx, err := entity.NewTransaction(merchantID, transactionID, method, quote, description, l.ttl, l.timeProvider)
		if err != nil {
			return nil, err
		}

		if prepare != nil {
			if err := prepare(ctx, tx); err != nil {
				return nil, err
			}
		}

		err = l.uow.Do(ctx, func(ctx context.Context) error {
			return l.appendPending(ctx, tx)
		})
		if err == nil {
			l.logger.Info("Transaction created", map[string]any{
				"merchant_id":    merchantID,
				"transaction_id": tx.TransactionID,
				"amount":         tx.Amount,
				"method":         tx.PaymentMethod,
			})
			l.publish(ctx, entity.EventTransactionCreated, tx)
			return tx, nil
		}
		if !errs.IsDuplicatePendingAmount(err) {
			return nil, err
		}

		l.logger.Warn("Pending amount taken after allocation, redrawing", map[string]any{
			"merchant_id": merchantID,
			"amount":      tx.Amount,
			"attempt":     attempt,
		})
		taken[tx.Amount] = struct{}{}
	}

	return nil, errs.NewAllocationError(merchantID, base, method.FeeFor(base), l.disambiguator.MaxAttempts())
}

// appendPending writes the transaction and its summary change. The summary row
// lock serializes creates and transitions of one merchant across instances.
func (l *Ledger) appendPending(ctx context.Context, tx *entity.Transaction) error {
	summaries := l.uow.GetSummaryRepository(ctx)
	txRepo := l.uow.GetTransactionRepository(ctx)

	summary, err := summaries.GetForUpdate(ctx, tx.MerchantID)
	if err != nil {
		return err
	}

	clash, err := txRepo.FindPendingByAmount(ctx, tx.MerchantID, tx.Amount)
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return errs.ErrDuplicatePendingAmount
	}

	if err := txRepo.Create(ctx, tx); err != nil {
		return err
	}

	summary.ApplyCreated(tx, l.timeProvider.Now())
	return summaries.Save(ctx, summary)
}

// MarkSuccess moves a pending transaction to sukses. Repeated calls return the
// stored transaction with Changed false.
func (l *Ledger) MarkSuccess(ctx context.Context, merchantID uint64, transactionID, source string) (*FinalizeResult, error) {
	return l.finalize(ctx, merchantID, transactionID, entity.StatusSukses, source)
}

// MarkFailed moves a pending transaction to gagal. Repeated calls return the
// stored transaction with Changed false.
func (l *Ledger) MarkFailed(ctx context.Context, merchantID uint64, transactionID, source string) (*FinalizeResult, error) {
	return l.finalize(ctx, merchantID, transactionID, entity.StatusGagal, source)
}

// UpdateStatus is the manual edit of a merchant. Unlike the webhook path it
// rejects transactions that are already terminal.
func (l *Ledger) UpdateStatus(
	ctx context.Context,
	merchantID uint64,
	transactionID string,
	status entity.TransactionStatus,
) (*entity.Transaction, error) {
	if !status.IsTerminal() {
		return nil, errs.NewValidationError("status", "must be sukses or gagal", errs.ErrInvalidStatus)
	}

	result, err := l.finalize(ctx, merchantID, transactionID, status, entity.SourceMerchant)
	if err != nil {
		return nil, err
	}
	if !result.Changed {
		return nil, errs.NewTransitionError(transactionID, merchantID,
			string(result.Transaction.Status), string(status), errs.ErrAlreadyFinalized)
	}
	return result.Transaction, nil
}

func (l *Ledger) finalize(
	ctx context.Context,
	merchantID uint64,
	transactionID string,
	status entity.TransactionStatus,
	source string,
) (*FinalizeResult, error) {
	stored, finalized, err := l.idempotency.CheckFinalized(ctx, merchantID, transactionID)
	if err != nil {
		return nil, err
	}
	if finalized {
		return &FinalizeResult{Transaction: stored}, nil
	}

	var result *FinalizeResult
	err = l.uow.Do(ctx, func(ctx context.Context) error {
		summaries := l.uow.GetSummaryRepository(ctx)
		txRepo := l.uow.GetTransactionRepository(ctx)

		summary, err := summaries.GetForUpdate(ctx, merchantID)
		if err != nil {
			return err
		}

		now := l.timeProvider.Now()
		changed, err := txRepo.FinalizeIfPending(ctx, transactionID, status, source, now)
		if err != nil {
			return err
		}

		if !changed {
			current, err := txRepo.GetForMerchant(ctx, merchantID, transactionID)
			if err != nil {
				return err
			}
			result = &FinalizeResult{Transaction: current}
			return nil
		}

		// the row matched the pending guard, so the loaded copy only lacks the transition
		tx := *stored
		if err := tx.Finalize(status, source, now); err != nil {
			return err
		}

		switch status {
		case entity.StatusSukses:
			summary.ApplySucceeded(&tx, now)
		case entity.StatusGagal:
			summary.ApplyFailed(&tx, now)
		}
		if err := summaries.Save(ctx, summary); err != nil {
			return err
		}

		result = &FinalizeResult{Transaction: &tx, Changed: true}
		return nil
	})
	if err != nil {
		l.logger.Error("Failed to finalize transaction", map[string]any{
			"merchant_id":    merchantID,
			"transaction_id": transactionID,
			"status":         string(status),
			"source":         source,
			"error":          err.Error(),
		})
		return nil, err
	}

	if result.Changed {
		l.logger.Info("Transaction finalized", map[string]any{
			"merchant_id":    merchantID,
			"transaction_id": transactionID,
			"status":         string(status),
			"source":         source,
			"amount":         result.Transaction.Amount,
		})
		l.publish(ctx, entity.EventForStatus(status), result.Transaction)
	}
	return result, nil
}

// publish ships an event after commit; failures are only logged
func (l *Ledger) publish(ctx context.Context, eventType entity.EventType, tx *entity.Transaction) {
	if l.events == nil {
		return
	}
	event := entity.NewTransactionEvent(eventType, tx, l.timeProvider.Now())
	if err := l.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		l.logger.Warn("Failed to publish transaction event", map[string]any{
			"event":          string(eventType),
			"transaction_id": tx.TransactionID,
			"error":          err.Error(),
		})
	}
}
