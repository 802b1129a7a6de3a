package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openDialector returns the gorm dialector of the configured driver
func openDialector(config *Config) (gorm.Dialector, error) {
	switch config.Driver {
	case DriverPostgres:
		return postgres.Open(config.DSN()), nil
	case DriverSQLite:
		return sqlite.Open(config.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}
}

// configurePool applies pool limits and pings the database
func configurePool(ctx context.Context, db *gorm.DB, config *Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	maxOpen, maxIdle := config.MaxOpenConns, config.MaxIdleConns
	lifetime, idleTime := config.ConnMaxLifetime, config.ConnMaxIdleTime
	if config.Driver == DriverSQLite {
		// sqlite allows a single writer, and an in-memory database dies with its last connection
		maxOpen, maxIdle = 1, 1
		lifetime, idleTime = 0, 0
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	sqlDB.SetConnMaxIdleTime(idleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
