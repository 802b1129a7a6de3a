package gateway

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// PaymentNotifier tells a merchant that a transaction was paid.
// Implementations must honour ctx deadlines; callers never retry.
type PaymentNotifier interface {
	// Name identifies the channel in logs
	Name() string
	// NotifyPaymentReceived sends the notification, or returns nil when the
	// merchant did not configure this channel
	NotifyPaymentReceived(ctx context.Context, merchant *entity.Merchant, tx *entity.Transaction) error
}
