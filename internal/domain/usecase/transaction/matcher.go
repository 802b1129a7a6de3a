package transaction

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

var (
	amountPattern = regexp.MustCompile(`\d[\d.,]*`)
	groupingStrip = strings.NewReplacer(".", "", ",", "")
)

// ExtractAmount reads the first digit run of a notification text, allowing
// '.' and ',' as grouping characters. "Rp 52.500" yields 52500.
func ExtractAmount(text string) (int64, error) {
	run := amountPattern.FindString(text)
	if run == "" {
		return 0, errs.ErrNoAmountFound
	}

	amount, err := strconv.ParseInt(groupingStrip.Replace(run), 10, 64)
	if err != nil {
		return 0, errs.ErrNoAmountFound
	}
	return amount, nil
}

// NotificationMatcher settles the pending transaction whose amount appears in
// a free text notification
type NotificationMatcher struct {
	uow        persistence.UnitOfWork
	ledger     *Ledger
	dispatcher *NotificationDispatcher
	logger     coreport.Logger
}

// NewNotificationMatcher creates a matcher. dispatcher may be nil.
func NewNotificationMatcher(
	uow persistence.UnitOfWork,
	ledger *Ledger,
	dispatcher *NotificationDispatcher,
	logger coreport.Logger,
) *NotificationMatcher {
	return &NotificationMatcher{
		uow:        uow,
		ledger:     ledger,
		dispatcher: dispatcher,
		logger:     logger.Named("matcher"),
	}
}

// Match resolves the notification text to a pending transaction of the
// merchant and marks it paid. Texts without an amount and amounts without a
// pending transaction are reported as unmatched, not as errors.
func (m *NotificationMatcher) Match(
	ctx context.Context,
	merchant *entity.Merchant,
	app, text string,
) (*usecase.NotificationResult, error) {
	amount, err := ExtractAmount(text)
	if errors.Is(err, errs.ErrNoAmountFound) {
		m.logger.Debug("Notification without amount", map[string]any{
			"merchant_id": merchant.ID,
			"app":         app,
		})
		return &usecase.NotificationResult{}, nil
	}

	candidates, err := m.uow.GetTransactionRepository(ctx).FindPendingByAmount(ctx, merchant.ID, amount)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		m.logger.Info("No pending transaction for notification amount", map[string]any{
			"merchant_id": merchant.ID,
			"app":         app,
			"amount":      amount,
		})
		return &usecase.NotificationResult{AmountFound: true, Amount: amount}, nil
	}

	target := earliest(candidates)
	if len(candidates) > 1 {
		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.TransactionID)
		}
		m.logger.Warn("Several pending transactions share a notification amount", map[string]any{
			"merchant_id": merchant.ID,
			"amount":      amount,
			"candidates":  ids,
			"chosen":      target.TransactionID,
		})
	}

	result, err := m.ledger.MarkSuccess(ctx, merchant.ID, target.TransactionID, entity.WebhookSource(app))
	if err != nil {
		return nil, err
	}

	if result.Changed && m.dispatcher != nil {
		m.dispatcher.Dispatch(ctx, merchant, result.Transaction)
	}

	return &usecase.NotificationResult{
		Matched:          true,
		Updated:          result.Changed,
		AmountFound:      true,
		Amount:           amount,
		Transaction:      result.Transaction,
		AlreadyFinalized: !result.Changed,
	}, nil
}

func earliest(txs []*entity.Transaction) *entity.Transaction {
	first := txs[0]
	for _, tx := range txs[1:] {
		if tx.CreatedAt.Before(first.CreatedAt) {
			first = tx
		}
	}
	return first
}
