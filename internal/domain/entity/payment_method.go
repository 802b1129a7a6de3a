package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
)

// PaymentCategory groups payment methods by how the customer pays
type PaymentCategory string

// Payment categories
const (
	CategoryBank    PaymentCategory = "Bank"
	CategoryEwallet PaymentCategory = "Ewallet"
	CategoryQRIS    PaymentCategory = "QRIS"
)

// FeeType selects how the method fee is applied to the base amount
type FeeType string

// Fee types
const (
	FeeFixed  FeeType = "Fixed"
	FeePersen FeeType = "Persen"
)

var hundred = decimal.NewFromInt(100)

// ParsePaymentCategory accepts a category in any letter case, e.g. "qris" or "Ewallet"
func ParsePaymentCategory(raw string) (PaymentCategory, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "bank":
		return CategoryBank, nil
	case "ewallet":
		return CategoryEwallet, nil
	case "qris":
		return CategoryQRIS, nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrInvalidCategory, raw)
	}
}

// Slug returns the lowercase form used in URLs
func (c PaymentCategory) Slug() string {
	return strings.ToLower(string(c))
}

// IsValidFeeType reports whether feeType is one of the supported fee types
func IsValidFeeType(feeType string) bool {
	return feeType == string(FeeFixed) || feeType == string(FeePersen)
}

// PaymentMethod is a merchant-configured way to receive money
type PaymentMethod struct {
	MerchantID            uint64
	ID                    string // lowercase alnum, unique per merchant
	Name                  string
	Category              PaymentCategory
	AccountNumber         string // Bank and Ewallet
	AccountName           string // Bank and Ewallet
	QRISName              string // QRIS
	QRISURL               string // QRIS static image
	QRISString            string // QRIS static payload
	IconURL               string
	MinAmount             int64 // 0 means no lower bound
	MaxAmount             int64 // 0 means no upper bound
	Fee                   decimal.Decimal
	FeeType               FeeType
	NotificationTemplates []string
	Enabled               bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// SanitizeMethodID keeps only lowercase letters and digits
func SanitizeMethodID(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FeeFor computes the fee charged on top of the base amount, in whole Rupiah.
// Percentages round half away from zero.
func (m *PaymentMethod) FeeFor(base int64) int64 {
	if m.FeeType == FeePersen {
		return decimal.NewFromInt(base).Mul(m.Fee).Div(hundred).Round(0).IntPart()
	}
	return m.Fee.Round(0).IntPart()
}

// CheckAmount validates the base amount against the method bounds
func (m *PaymentMethod) CheckAmount(base int64) error {
	if base <= 0 {
		return errs.NewValidationError("amount", "must be a positive whole number", errs.ErrInvalidAmount)
	}
	if m.MinAmount > 0 && base < m.MinAmount {
		return errs.NewValidationError("amount", "must be at least "+FormatRupiah(m.MinAmount), errs.ErrAmountOutOfRange)
	}
	if m.MaxAmount > 0 && base > m.MaxAmount {
		return errs.NewValidationError("amount", "must be at most "+FormatRupiah(m.MaxAmount), errs.ErrAmountOutOfRange)
	}
	return nil
}

// AvailableFor checks that the method can take a new transaction of the category
func (m *PaymentMethod) AvailableFor(category PaymentCategory) error {
	if !m.Enabled || m.Category != category {
		return fmt.Errorf("%w: %s method %q", errs.ErrMethodUnavailable, category, m.ID)
	}
	if m.Category == CategoryQRIS && strings.TrimSpace(m.QRISString) == "" {
		return fmt.Errorf("%w: static QRIS payload of %q is not set", errs.ErrMethodUnavailable, m.ID)
	}
	return nil
}

// Validate checks the invariants that do not depend on input tags
func (m *PaymentMethod) Validate() error {
	if m.ID == "" {
		return errs.NewValidationError("id", "must contain letters or digits", nil)
	}
	if !IsValidFeeType(string(m.FeeType)) {
		return errs.NewValidationError("feeType", "must be Fixed or Persen", nil)
	}
	if m.Fee.IsNegative() {
		return errs.NewValidationError("fee", "cannot be negative", nil)
	}
	if m.MinAmount < 0 || m.MaxAmount < 0 {
		return errs.NewValidationError("minAmount", "bounds cannot be negative", nil)
	}
	if m.MaxAmount > 0 && m.MinAmount > m.MaxAmount {
		return errs.NewValidationError("maxAmount", "must not be below minAmount", nil)
	}
	switch m.Category {
	case CategoryQRIS:
		if strings.TrimSpace(m.QRISString) == "" {
			return errs.NewValidationError("qrisString", "is required for QRIS", nil)
		}
	case CategoryBank, CategoryEwallet:
		if strings.TrimSpace(m.AccountNumber) == "" {
			return errs.NewValidationError("accountNumber", "is required", nil)
		}
	default:
		return errs.NewValidationError("category", "is unknown", errs.ErrInvalidCategory)
	}
	return nil
}
