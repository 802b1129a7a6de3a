package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	tport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// TransactionStatus defines possible status values for a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusPending TransactionStatus = "pending"
	StatusSukses  TransactionStatus = "sukses"
	StatusGagal   TransactionStatus = "gagal"
)

// DefaultTransactionTTL is how long a customer has to pay
const DefaultTransactionTTL = 15 * time.Minute

// Finalization sources recorded on terminal transactions
const (
	SourceExpiry   = "expiry"
	SourceMerchant = "merchant"
)

// WebhookSource names a finalization coming from a notification app
func WebhookSource(app string) string {
	if app == "" {
		app = "unknown"
	}
	return "webhook:" + app
}

// IsValidStatus validates if the status is allowed
func IsValidStatus(status string) bool {
	switch TransactionStatus(status) {
	case StatusPending, StatusSukses, StatusGagal:
		return true
	}
	return false
}

// IsTerminal reports whether the status can no longer change
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSukses || s == StatusGagal
}

// AmountQuote is the decomposition of the amount a customer has to pay
type AmountQuote struct {
	Base   int64
	Fee    int64
	Unique int64
}

// Total returns Base + Fee + Unique
func (q AmountQuote) Total() int64 {
	return q.Base + q.Fee + q.Unique
}

// Transaction is a payment intent of a merchant
type Transaction struct {
	ID            uint64            // Database identifier
	MerchantID    uint64            // Owner of the transaction
	TransactionID string            // Globally unique, time ordered external id
	Description   string            // Free text from the merchant or store
	BaseAmount    int64             // Amount requested by the customer
	FeeAmount     int64             // Method fee
	UniqueNumber  int64             // Disambiguating increment
	Amount        int64             // BaseAmount + FeeAmount + UniqueNumber, the matching key
	Status        TransactionStatus // pending, sukses or gagal
	PaymentMethod string            // Copy of the method id
	Category      PaymentCategory   // Category of the method at creation time
	PaymentURL    string            // Public payment page
	QRBase64      string            // Dynamic QRIS image, QRIS only
	QRURL         string            // Uploaded QRIS image, QRIS only
	CreatedAt     time.Time         // When the transaction was created
	ExpiredAt     time.Time         // When the reaper may fail it
	FinalizedAt   *time.Time        // When it left pending
	FinalizedBy   string            // Who finalized it
}

// NewTransactionID returns "TRX-" followed by a UUIDv7
func NewTransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate transaction id: %w", err)
	}
	return "TRX-" + id.String(), nil
}

// NewTransaction creates a pending transaction for an allocated quote
func NewTransaction(
	merchantID uint64,
	transactionID string,
	method *PaymentMethod,
	quote AmountQuote,
	description string,
	ttl time.Duration,
	timeProvider tport.TimeProvider,
) (*Transaction, error) {
	if merchantID == 0 {
		return nil, errs.ErrMerchantNotFound
	}
	if transactionID == "" {
		return nil, errs.NewValidationError("transactionId", "cannot be empty", nil)
	}
	if method == nil {
		return nil, errs.ErrMethodNotFound
	}
	if quote.Base <= 0 || quote.Fee < 0 || quote.Unique <= 0 {
		return nil, fmt.Errorf("%w: invalid quote %+v", errs.ErrInvalidAmount, quote)
	}
	if ttl <= 0 {
		ttl = DefaultTransactionTTL
	}

	now := timeProvider.Now()
	return &Transaction{
		MerchantID:    merchantID,
		TransactionID: transactionID,
		Description:   description,
		BaseAmount:    quote.Base,
		FeeAmount:     quote.Fee,
		UniqueNumber:  quote.Unique,
		Amount:        quote.Total(),
		Status:        StatusPending,
		PaymentMethod: method.ID,
		Category:      method.Category,
		CreatedAt:     now,
		ExpiredAt:     now.Add(ttl),
	}, nil
}

// IsPending reports whether the transaction still waits for payment
func (t *Transaction) IsPending() bool {
	return t.Status == StatusPending
}

// IsExpired reports whether the payment window is over
func (t *Transaction) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiredAt)
}

// Margin is the part of the amount that is not the customer's base amount
func (t *Transaction) Margin() int64 {
	return t.FeeAmount + t.UniqueNumber
}

// Finalize moves a pending transaction to a terminal status
func (t *Transaction) Finalize(status TransactionStatus, source string, at time.Time) error {
	if !status.IsTerminal() {
		return errs.NewValidationError("status", "must be sukses or gagal", errs.ErrInvalidStatus)
	}
	if !t.IsPending() {
		return errs.NewTransitionError(t.TransactionID, t.MerchantID, string(t.Status), string(status), errs.ErrAlreadyFinalized)
	}
	t.Status = status
	t.FinalizedAt = &at
	t.FinalizedBy = source
	return nil
}

// SuccessTime is the moment the transaction counted as paid
func (t *Transaction) SuccessTime() time.Time {
	if t.FinalizedAt != nil {
		return *t.FinalizedAt
	}
	return t.CreatedAt
}
