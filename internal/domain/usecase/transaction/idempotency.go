package transaction

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
)

// IdempotencyHandler short-circuits repeated finalizations of the same transaction
type IdempotencyHandler struct {
	uow persistence.UnitOfWork
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(uow persistence.UnitOfWork) *IdempotencyHandler {
	return &IdempotencyHandler{
		uow: uow,
	}
}

// CheckFinalized loads the transaction of the merchant and reports whether it
// already left pending. Callers return the stored transaction unchanged in that case.
//
// Possible errors:
// - ErrTransactionNotFound: If the merchant has no such transaction
func (h *IdempotencyHandler) CheckFinalized(
	ctx context.Context,
	merchantID uint64,
	transactionID string,
) (*entity.Transaction, bool, error) {
	txn, err := h.uow.GetTransactionRepository(ctx).GetForMerchant(ctx, merchantID, transactionID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}

	return txn, txn.Status.IsTerminal(), nil
}
