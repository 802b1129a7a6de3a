package persistence

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// MerchantRepository defines essential methods to interact with merchant accounts
type MerchantRepository interface {
	// GetByID retrieves a merchant by ID
	//
	// Possible errors:
	// - ErrMerchantNotFound: If merchant with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Merchant, error)

	// GetByAPIKeyHash retrieves the merchant owning an API key
	//
	// Possible errors:
	// - ErrMerchantNotFound: If no merchant owns the key
	GetByAPIKeyHash(ctx context.Context, hash string) (*entity.Merchant, error)

	// GetByUsername retrieves a merchant by its unique username
	//
	// Possible errors:
	// - ErrMerchantNotFound: If no merchant has the username
	GetByUsername(ctx context.Context, username string) (*entity.Merchant, error)

	// Create creates a new merchant and sets its ID
	//
	// Possible errors:
	// - ErrDuplicateMerchant: If the username or API key is taken
	Create(ctx context.Context, merchant *entity.Merchant) error

	// Update updates merchant settings
	//
	// Possible errors:
	// - ErrMerchantNotFound: If merchant doesn't exist
	Update(ctx context.Context, merchant *entity.Merchant) error

	// ListIDs returns the IDs of every merchant, used by background jobs
	ListIDs(ctx context.Context) ([]uint64, error)
}
