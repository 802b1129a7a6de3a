package entity

import "time"

// EventType names a transaction lifecycle event
type EventType string

// Lifecycle events
const (
	EventTransactionCreated   EventType = "transaction.created"
	EventTransactionSucceeded EventType = "transaction.succeeded"
	EventTransactionFailed    EventType = "transaction.failed"
)

// TransactionEvent is published after a ledger change is committed
type TransactionEvent struct {
	Type          EventType `json:"type"`
	MerchantID    uint64    `json:"merchantId"`
	TransactionID string    `json:"transactionId"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"paymentMethod"`
	Source        string    `json:"source,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewTransactionEvent snapshots a transaction into an event
func NewTransactionEvent(eventType EventType, tx *Transaction, occurredAt time.Time) TransactionEvent {
	return TransactionEvent{
		Type:          eventType,
		MerchantID:    tx.MerchantID,
		TransactionID: tx.TransactionID,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		Category:      string(tx.Category),
		PaymentMethod: tx.PaymentMethod,
		Source:        tx.FinalizedBy,
		OccurredAt:    occurredAt,
	}
}

// EventForStatus maps a terminal status to its event type
func EventForStatus(status TransactionStatus) EventType {
	switch status {
	case StatusSukses:
		return EventTransactionSucceeded
	case StatusGagal:
		return EventTransactionFailed
	default:
		return EventTransactionCreated
	}
}
