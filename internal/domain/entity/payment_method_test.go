package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
)

func TestParsePaymentCategory(t *testing.T) {
	for raw, want := range map[string]PaymentCategory{
		"bank":    CategoryBank,
		"Bank":    CategoryBank,
		"EWALLET": CategoryEwallet,
		" qris ":  CategoryQRIS,
	} {
		got, err := ParsePaymentCategory(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParsePaymentCategory("crypto")
	assert.ErrorIs(t, err, errs.ErrInvalidCategory)
	assert.Equal(t, "ewallet", CategoryEwallet.Slug())
}

func TestSanitizeMethodID(t *testing.T) {
	assert.Equal(t, "bca1", SanitizeMethodID("BCA-1"))
	assert.Equal(t, "gopay", SanitizeMethodID(" Go Pay! "))
	assert.Equal(t, "", SanitizeMethodID("--"))
}

func TestPaymentMethod_FeeFor(t *testing.T) {
	tests := []struct {
		name    string
		fee     string
		feeType FeeType
		base    int64
		want    int64
	}{
		{"fixed", "2500", FeeFixed, 50000, 2500},
		{"fixed ignores base", "2500", FeeFixed, 1, 2500},
		{"fixed zero", "0", FeeFixed, 50000, 0},
		{"percent exact", "1.5", FeePersen, 50000, 750},
		{"percent rounds half up", "0.7", FeePersen, 12500, 88},
		{"percent rounds down", "0.7", FeePersen, 12050, 84},
		{"percent zero", "0", FeePersen, 50000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &PaymentMethod{Fee: decimal.RequireFromString(tt.fee), FeeType: tt.feeType}
			assert.Equal(t, tt.want, m.FeeFor(tt.base))
		})
	}
}

func TestPaymentMethod_CheckAmount(t *testing.T) {
	m := &PaymentMethod{MinAmount: 10000, MaxAmount: 100000}

	assert.NoError(t, m.CheckAmount(10000))
	assert.NoError(t, m.CheckAmount(100000))
	assert.ErrorIs(t, m.CheckAmount(0), errs.ErrInvalidAmount)
	assert.ErrorIs(t, m.CheckAmount(-1), errs.ErrInvalidAmount)
	assert.ErrorIs(t, m.CheckAmount(9999), errs.ErrAmountOutOfRange)
	assert.ErrorIs(t, m.CheckAmount(100001), errs.ErrAmountOutOfRange)

	unbounded := &PaymentMethod{}
	assert.NoError(t, unbounded.CheckAmount(1))
	assert.NoError(t, unbounded.CheckAmount(1_000_000_000))
}

func TestPaymentMethod_AvailableFor(t *testing.T) {
	bank := &PaymentMethod{ID: "bca", Category: CategoryBank, Enabled: true}
	assert.NoError(t, bank.AvailableFor(CategoryBank))
	assert.ErrorIs(t, bank.AvailableFor(CategoryQRIS), errs.ErrMethodUnavailable)

	bank.Enabled = false
	assert.ErrorIs(t, bank.AvailableFor(CategoryBank), errs.ErrMethodUnavailable)

	qris := &PaymentMethod{ID: "qris", Category: CategoryQRIS, Enabled: true}
	assert.ErrorIs(t, qris.AvailableFor(CategoryQRIS), errs.ErrMethodUnavailable)
	qris.QRISString = "000201"
	assert.NoError(t, qris.AvailableFor(CategoryQRIS))
}

func TestPaymentMethod_Validate(t *testing.T) {
	valid := PaymentMethod{ID: "bca", Category: CategoryBank, AccountNumber: "123", Fee: decimal.Zero, FeeType: FeeFixed}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		edit func(*PaymentMethod)
	}{
		{"empty id", func(m *PaymentMethod) { m.ID = "" }},
		{"negative fee", func(m *PaymentMethod) { m.Fee = decimal.NewFromInt(-1) }},
		{"missing fee type", func(m *PaymentMethod) { m.FeeType = "" }},
		{"unknown fee type", func(m *PaymentMethod) { m.FeeType = "Flat" }},
		{"negative bound", func(m *PaymentMethod) { m.MinAmount = -1 }},
		{"reversed bounds", func(m *PaymentMethod) { m.MinAmount, m.MaxAmount = 10, 5 }},
		{"bank without account", func(m *PaymentMethod) { m.AccountNumber = "" }},
		{"qris without payload", func(m *PaymentMethod) { m.Category = CategoryQRIS }},
		{"unknown category", func(m *PaymentMethod) { m.Category = "Crypto" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.edit(&m)
			assert.ErrorIs(t, m.Validate(), errs.ErrValidation)
		})
	}
}

func TestIsValidFeeType(t *testing.T) {
	assert.True(t, IsValidFeeType("Fixed"))
	assert.True(t, IsValidFeeType("Persen"))
	assert.False(t, IsValidFeeType("fixed"))
	assert.False(t, IsValidFeeType(""))
}
