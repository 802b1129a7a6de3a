package model

import (
	"time"
)

// MigrationVersion records an applied schema migration
type MigrationVersion struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Version     string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Description string    `gorm:"type:text"`
	AppliedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for the migration version model
func (MigrationVersion) TableName() string {
	return "migration_versions"
}
