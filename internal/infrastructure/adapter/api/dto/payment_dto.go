package dto

import (
	"encoding/json"
	"time"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// Webhook actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// WebhookRequest is the body of POST /payment/:category. Create calls carry
// amount and paymentMethod, update calls carry app and notification.
type WebhookRequest struct {
	Action        string      `json:"action" binding:"required"`
	APIKey        string      `json:"apikey"`
	Amount        json.Number `json:"amount"`
	PaymentMethod string      `json:"paymentMethod"`
	Description   string      `json:"description"`
	App           string      `json:"app"`
	Notification  string      `json:"notification"`
}

// StorePaymentRequest is the body of POST /store/:username/pay
type StorePaymentRequest struct {
	PaymentMethod string      `json:"paymentMethod" binding:"required"`
	Amount        json.Number `json:"amount" binding:"required"`
	Description   string      `json:"description"`
}

// StatusUpdateRequest is the manual status edit of a merchant
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// NotificationResponse describes what an update call did
type NotificationResponse struct {
	Amount        int64  `json:"amount,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	Status        string `json:"status,omitempty"`
}

// NewNotificationResponse converts the matcher outcome
func NewNotificationResponse(result *usecase.NotificationResult) *NotificationResponse {
	if result == nil || !result.AmountFound {
		return nil
	}
	resp := &NotificationResponse{Amount: result.Amount}
	if result.Transaction != nil {
		resp.TransactionID = result.Transaction.TransactionID
		resp.Status = string(result.Transaction.Status)
	}
	return resp
}

// TransactionView is a transaction in the merchant history
type TransactionView struct {
	TransactionID string     `json:"transactionId"`
	Description   string     `json:"description,omitempty"`
	BaseAmount    int64      `json:"baseAmount"`
	FeeAmount     int64      `json:"feeAmount"`
	UniqueNumber  int64      `json:"uniqueNumber"`
	Amount        int64      `json:"amount"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod"`
	Category      string     `json:"category"`
	PaymentURL    string     `json:"paymentUrl,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	ExpiredAt     time.Time  `json:"expiredAt"`
	FinalizedAt   *time.Time `json:"finalizedAt,omitempty"`
	FinalizedBy   string     `json:"finalizedBy,omitempty"`
}

// NewTransactionView converts a transaction entity
func NewTransactionView(tx *entity.Transaction) TransactionView {
	return TransactionView{
		TransactionID: tx.TransactionID,
		Description:   tx.Description,
		BaseAmount:    tx.BaseAmount,
		FeeAmount:     tx.FeeAmount,
		UniqueNumber:  tx.UniqueNumber,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		PaymentMethod: tx.PaymentMethod,
		Category:      string(tx.Category),
		PaymentURL:    tx.PaymentURL,
		CreatedAt:     tx.CreatedAt,
		ExpiredAt:     tx.ExpiredAt,
		FinalizedAt:   tx.FinalizedAt,
		FinalizedBy:   tx.FinalizedBy,
	}
}

// TransactionListResponse is one page of the merchant history
type TransactionListResponse struct {
	Transactions []TransactionView `json:"transactions"`
	Total        int64             `json:"total"`
	Limit        int               `json:"limit"`
	Offset       int               `json:"offset"`
}
