package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// TestDBManager provides a migrated SQLite database for package tests
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager opens a fresh SQLite file in the test temp dir, migrates it
// and closes it when the test ends
func NewTestDBManager(t *testing.T, logger coreport.Logger, timeProvider coreport.TimeProvider) *TestDBManager {
	t.Helper()

	config := DefaultConfig()
	config.Driver = DriverSQLite
	config.Database = filepath.Join(t.TempDir(), "gateway.db")
	config.LogLevel = "silent"
	config.RetryAttempts = 3
	config.RetryDelay = 10 * time.Millisecond
	config.SlowThreshold = 0

	manager := NewManager(config, logger, timeProvider)
	ctx := context.Background()
	if _, err := manager.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}
