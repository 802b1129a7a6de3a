package transaction

import (
	"strings"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/usecase"
)

// Request limits
const (
	MaxDescriptionLength  = 255
	MaxNotificationLength = 2000
	MaxAppNameLength      = 64
)

// RequestValidator checks payment requests before they reach the ledger
type RequestValidator struct{}

// NewRequestValidator creates a new RequestValidator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// ValidateCreate checks the fields of a create request
func (v *RequestValidator) ValidateCreate(req usecase.CreatePaymentRequest) error {
	if strings.TrimSpace(req.MethodID) == "" {
		return errs.NewValidationError("paymentMethod", "is required", errs.ErrMethodNotFound)
	}
	if req.Amount <= 0 {
		return errs.NewValidationError("amount", "must be a positive whole number", errs.ErrInvalidAmount)
	}
	if len(req.Description) > MaxDescriptionLength {
		return errs.NewValidationError("description", "is too long", nil)
	}
	return nil
}

// ValidateNotification checks the fields of an update request. An empty text
// is accepted because it simply matches nothing.
func (v *RequestValidator) ValidateNotification(req usecase.NotificationRequest) error {
	if len(req.App) > MaxAppNameLength {
		return errs.NewValidationError("app", "is too long", nil)
	}
	if len(req.Text) > MaxNotificationLength {
		return errs.NewValidationError("notification", "is too long", nil)
	}
	return nil
}

// ValidateManualStatus parses the target status of a manual edit
func (v *RequestValidator) ValidateManualStatus(transactionID, status string) (entity.TransactionStatus, error) {
	if strings.TrimSpace(transactionID) == "" {
		return "", errs.NewValidationError("transactionId", "is required", nil)
	}

	target := entity.TransactionStatus(strings.ToLower(strings.TrimSpace(status)))
	if !target.IsTerminal() {
		return "", errs.NewValidationError("status", "must be sukses or gagal", errs.ErrInvalidStatus)
	}
	return target, nil
}
