package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// TransactionFilter narrows a merchant transaction listing
type TransactionFilter struct {
	Status string // empty for all
	Limit  int
	Offset int
}

// TransactionRepository defines essential methods to interact with transaction data
type TransactionRepository interface {
	// Create saves a new pending transaction and sets its ID
	//
	// Possible errors:
	// - ErrDuplicatePendingAmount: If another pending transaction of the merchant has the same amount
	// - ErrConstraintViolation: If the transaction id already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByTransactionID retrieves a transaction by its external transaction ID
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error)

	// GetForMerchant retrieves a transaction only if it belongs to the merchant
	//
	// Possible errors:
	// - ErrTransactionNotFound: If the merchant has no such transaction
	GetForMerchant(ctx context.Context, merchantID uint64, transactionID string) (*entity.Transaction, error)

	// PendingAmounts returns the amounts of all pending transactions of a merchant
	PendingAmounts(ctx context.Context, merchantID uint64) ([]int64, error)

	// FindPendingByAmount returns pending transactions with the exact amount, oldest first
	FindPendingByAmount(ctx context.Context, merchantID uint64, amount int64) ([]*entity.Transaction, error)

	// FinalizeIfPending atomically moves a transaction out of pending.
	// It returns false when the transaction was not pending anymore.
	FinalizeIfPending(ctx context.Context, transactionID string, status entity.TransactionStatus, source string, at time.Time) (bool, error)

	// ListExpiredPending returns pending transactions whose expiry passed, oldest expiry first
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error)

	// ListByMerchant pages through the merchant history, newest first, with the total count
	ListByMerchant(ctx context.Context, merchantID uint64, filter TransactionFilter) ([]*entity.Transaction, int64, error)

	// AllForMerchant loads the complete history of a merchant for reconciliation
	AllForMerchant(ctx context.Context, merchantID uint64) ([]*entity.Transaction, error)

	// CountPendingByMethod counts pending transactions referencing a method
	CountPendingByMethod(ctx context.Context, merchantID uint64, methodID string) (int64, error)
}
