package model

import (
	"time"
)

// Transaction represents the database model for transactions.
// The partial unique index on (merchant_id, amount) for pending rows is created by the migration manager.
type Transaction struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	MerchantID    uint64    `gorm:"not null;index:idx_transactions_merchant_created,priority:1"`
	TransactionID string    `gorm:"uniqueIndex;not null;size:64"`
	Description   string    `gorm:"size:255"`
	BaseAmount    int64     `gorm:"not null"`
	FeeAmount     int64     `gorm:"not null"`
	UniqueNumber  int64     `gorm:"not null"`
	Amount        int64     `gorm:"not null"`
	Status        string    `gorm:"not null;size:10;index:idx_transactions_status_expired,priority:1"`
	PaymentMethod string    `gorm:"not null;size:64"`
	Category      string    `gorm:"not null;size:16"`
	PaymentURL    string    `gorm:"size:500"`
	QRBase64      string    `gorm:"column:qr_base64;type:text"`
	QRURL         string    `gorm:"column:qr_url;size:500"`
	CreatedAt     time.Time `gorm:"not null;index:idx_transactions_merchant_created,priority:2"`
	ExpiredAt     time.Time `gorm:"not null;index:idx_transactions_status_expired,priority:2"`
	FinalizedAt   *time.Time
	FinalizedBy   string `gorm:"size:64"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
