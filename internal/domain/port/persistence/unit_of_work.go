package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// Do runs fn inside a transaction, committing on nil and rolling back otherwise.
	// Transient database errors restart fn. A context that already carries a
	// transaction joins it instead of starting a new one.
	Do(ctx context.Context, fn func(ctx context.Context) error) error

	// GetMerchantRepository returns a merchant repository bound to the current transaction
	GetMerchantRepository(ctx context.Context) MerchantRepository

	// GetPaymentMethodRepository returns a payment method repository bound to the current transaction
	GetPaymentMethodRepository(ctx context.Context) PaymentMethodRepository

	// GetTransactionRepository returns a transaction repository bound to the current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetSummaryRepository returns a summary repository bound to the current transaction
	GetSummaryRepository(ctx context.Context) SummaryRepository

	// GetRequestLogRepository returns a request log repository bound to the current transaction
	GetRequestLogRepository(ctx context.Context) RequestLogRepository

	// GetLeaseLockRepository returns a lease lock repository bound to the current transaction
	GetLeaseLockRepository(ctx context.Context) LeaseLockRepository
}
