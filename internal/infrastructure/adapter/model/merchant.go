package model

import (
	"time"
)

// Merchant represents the database model for merchants
type Merchant struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	Username          string    `gorm:"uniqueIndex;not null;size:32"`
	Email             string    `gorm:"size:255"`
	APIKeyHash        string    `gorm:"uniqueIndex;not null;size:64"`
	Verified          bool      `gorm:"not null;default:false"`
	DailyRequestLimit int64     `gorm:"not null;default:0"`
	NotifyEmail       bool      `gorm:"not null;default:false"`
	TelegramBotToken  string    `gorm:"size:255"`
	TelegramChatID    string    `gorm:"size:64"`
	StoreName         string    `gorm:"size:100"`
	StoreLogoURL      string    `gorm:"size:500"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName specifies the table name for Merchant
func (Merchant) TableName() string {
	return "merchants"
}
