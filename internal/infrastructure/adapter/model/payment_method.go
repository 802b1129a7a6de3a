package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentMethod represents a merchant payment method, keyed by merchant and method id
type PaymentMethod struct {
	MerchantID            uint64          `gorm:"primaryKey"`
	MethodID              string          `gorm:"primaryKey;size:64"`
	Name                  string          `gorm:"not null;size:100"`
	Category              string          `gorm:"not null;size:16;index"`
	AccountNumber         string          `gorm:"size:64"`
	AccountName           string          `gorm:"size:100"`
	QRISName              string          `gorm:"column:qris_name;size:100"`
	QRISURL               string          `gorm:"column:qris_url;size:500"`
	QRISString            string          `gorm:"column:qris_string;type:text"`
	IconURL               string          `gorm:"size:500"`
	MinAmount             int64           `gorm:"not null;default:0"`
	MaxAmount             int64           `gorm:"not null;default:0"`
	Fee                   decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0"`
	FeeType               string          `gorm:"not null;size:10"`
	NotificationTemplates datatypes.JSON
	Enabled               bool      `gorm:"not null"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
}

// TableName specifies the table name for PaymentMethod
func (PaymentMethod) TableName() string {
	return "payment_methods"
}
