package usecase

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
)

// CreatePaymentRequest asks for a new payment intent
type CreatePaymentRequest struct {
	Category    entity.PaymentCategory
	MethodID    string
	Amount      int64
	Description string
}

// NotificationRequest is a free-text notification forwarded by an automation app
type NotificationRequest struct {
	Category entity.PaymentCategory
	App      string
	Text     string
}

// NotificationResult describes what a notification changed
type NotificationResult struct {
	Matched          bool                // a pending transaction was found
	Updated          bool                // this call moved it to sukses
	AmountFound      bool                // the text carried an amount, possibly 0
	Amount           int64               // amount read from the text
	Transaction      *entity.Transaction // the matched transaction
	AlreadyFinalized bool                // the matched transaction was already terminal
}

// PaymentUseCase defines the payment operations exposed over HTTP
type PaymentUseCase interface {
	// CreatePayment creates a pending transaction for an authenticated merchant
	CreatePayment(ctx context.Context, merchant *entity.Merchant, req CreatePaymentRequest) (*entity.CreatedPaymentResponse, error)

	// CreateStorePayment creates a pending transaction from the public store of a merchant
	CreateStorePayment(ctx context.Context, username string, req CreatePaymentRequest) (*entity.CreatedPaymentResponse, error)

	// HandleNotification settles the pending transaction matching a notification text.
	// A text without an amount or without a matching transaction is not an error.
	HandleNotification(ctx context.Context, merchant *entity.Merchant, req NotificationRequest) (*NotificationResult, error)

	// GetStatus returns the status of a transaction owned by the merchant
	GetStatus(ctx context.Context, merchant *entity.Merchant, transactionID string) (*entity.PaymentStatusResponse, error)

	// GetStatusByToken returns the status behind a public payment link token
	GetStatusByToken(ctx context.Context, token string) (*entity.PaymentStatusResponse, error)

	// GetPaymentPage returns the public payment page data behind a token
	GetPaymentPage(ctx context.Context, token string) (*entity.PaymentPageResponse, error)

	// UpdateStatus is the manual pending to sukses or gagal edit of a merchant
	UpdateStatus(ctx context.Context, merchantID uint64, transactionID string, status entity.TransactionStatus) (*entity.Transaction, error)

	// ListTransactions pages through the merchant history
	ListTransactions(ctx context.Context, merchantID uint64, filter persistence.TransactionFilter) ([]*entity.Transaction, int64, error)

	// GetSummary returns the merchant counters
	GetSummary(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error)
}
