package transaction

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
)

// DefaultNotifyTimeout bounds each notifier call
const DefaultNotifyTimeout = 10 * coreport.Second

// NotificationDispatcher tells merchants about paid transactions over every
// configured channel. Failures never reach the caller.
type NotificationDispatcher struct {
	notifiers    []gateway.PaymentNotifier
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	timeout      coreport.Duration
}

// NewNotificationDispatcher creates a dispatcher
func NewNotificationDispatcher(
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	timeout coreport.Duration,
	notifiers ...gateway.PaymentNotifier,
) *NotificationDispatcher {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &NotificationDispatcher{
		notifiers:    notifiers,
		timeProvider: timeProvider,
		logger:       logger.Named("notify"),
		timeout:      timeout,
	}
}

// Dispatch runs every notifier in turn, each with its own timeout.
// The request context may already be cancelled, so it is detached first.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, merchant *entity.Merchant, tx *entity.Transaction) {
	base := context.WithoutCancel(ctx)
	for _, n := range d.notifiers {
		callCtx, cancel := d.timeProvider.WithTimeout(base, d.timeout)
		err := n.NotifyPaymentReceived(callCtx, merchant, tx)
		cancel()
		if err != nil {
			d.logger.Warn("Payment notification failed", map[string]any{
				"notifier":       n.Name(),
				"merchant_id":    merchant.ID,
				"transaction_id": tx.TransactionID,
				"error":          err.Error(),
			})
		}
	}
}
