package model

import (
	"time"
)

// LeaseLock is a named lock shared by every gateway instance, e.g. the expiry sweep
type LeaseLock struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Owner     string    `gorm:"not null;size:128"`
	LockedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for LeaseLock
func (LeaseLock) TableName() string {
	return "lease_locks"
}
