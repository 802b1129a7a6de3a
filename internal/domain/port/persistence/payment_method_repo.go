package persistence

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// PaymentMethodRepository stores the payment methods of merchants
type PaymentMethodRepository interface {
	// List returns all methods of a merchant ordered by category and id
	List(ctx context.Context, merchantID uint64) ([]*entity.PaymentMethod, error)

	// Get returns a single method
	//
	// Possible errors:
	// - ErrMethodNotFound: If the merchant has no method with this id
	Get(ctx context.Context, merchantID uint64, methodID string) (*entity.PaymentMethod, error)

	// Create stores a new method
	//
	// Possible errors:
	// - ErrDuplicateMethod: If the id is already used by the merchant
	Create(ctx context.Context, method *entity.PaymentMethod) error

	// Update replaces a method
	//
	// Possible errors:
	// - ErrMethodNotFound: If the method doesn't exist
	Update(ctx context.Context, method *entity.PaymentMethod) error

	// Delete removes a method
	//
	// Possible errors:
	// - ErrMethodNotFound: If the method doesn't exist
	Delete(ctx context.Context, merchantID uint64, methodID string) error
}
