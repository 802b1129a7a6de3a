package persistence

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// SummaryRepository stores the counters of each merchant, one row per merchant
type SummaryRepository interface {
	// Get reads the summary without locking
	//
	// Possible errors:
	// - ErrMerchantNotFound: If the merchant has no summary row
	Get(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error)

	// GetForUpdate reads and locks the summary row until the surrounding unit of work ends
	//
	// Possible errors:
	// - ErrMerchantNotFound: If the merchant has no summary row
	GetForUpdate(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error)

	// Create inserts the initial summary of a merchant
	Create(ctx context.Context, summary *entity.TransactionSummary) error

	// Save writes every counter of the summary
	Save(ctx context.Context, summary *entity.TransactionSummary) error
}
