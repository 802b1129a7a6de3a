package model

import (
	"time"
)

// TransactionSummary is the counter row of a merchant
type TransactionSummary struct {
	MerchantID         uint64    `gorm:"primaryKey"`
	Sukses             int64     `gorm:"not null;default:0"`
	Pending            int64     `gorm:"not null;default:0"`
	Gagal              int64     `gorm:"not null;default:0"`
	Total              int64     `gorm:"not null;default:0"`
	UangPending        int64     `gorm:"not null;default:0"`
	UangSuksesHariIni  int64     `gorm:"not null;default:0"`
	UangSuksesKemarin  int64     `gorm:"not null;default:0"`
	UangSuksesBulanIni int64     `gorm:"not null;default:0"`
	UangSuksesTotal    int64     `gorm:"not null;default:0"`
	OmsetTotal         int64     `gorm:"not null;default:0"`
	DayAnchor          time.Time `gorm:"not null"`
	MonthAnchor        time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`

	Merchant Merchant `gorm:"foreignKey:MerchantID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for TransactionSummary
func (TransactionSummary) TableName() string {
	return "transaction_summaries"
}
