package migration

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

const (
	// CurrentSchemaVersion represents the current database schema version
	CurrentSchemaVersion = "1.2.0"
)

// step is one versioned schema change
type step struct {
	version     string
	description string
	run         func(ctx context.Context) error
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	indexMgr     *IndexManager
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	logger = logger.Named("migration")
	return &MigrationManager{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		indexMgr:     NewIndexManager(db, logger),
	}
}

func (m *MigrationManager) steps() []step {
	return []step{
		{"1.0.0", "Base schema", m.autoMigrateModels},
		{"1.1.0", "Pending amount guard and lookup indexes", m.indexMgr.CreateIndexes},
		{"1.1.1", "Backfill finalization source", NewBackfillFinalizedBy(m.db, m.logger).Run},
		{"1.2.0", "PostgreSQL constraints and tuning", m.indexMgr.CreatePostgresConstraints},
	}
}

// MigrateAll applies every step newer than the recorded schema version
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": CurrentSchemaVersion,
		"dialect":        m.db.Dialector.Name(),
	})

	if err := m.db.WithContext(ctx).AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	currentVersion, err := m.GetCurrentVersion(ctx)
	if err != nil {
		m.logger.Error("Failed to check current schema version", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if currentVersion == CurrentSchemaVersion {
		m.logger.Info("Database already at target version, skipping migration", map[string]any{
			"version": currentVersion,
		})
		return nil
	}

	for _, s := range m.steps() {
		newer, err := versionLess(currentVersion, s.version)
		if err != nil {
			return err
		}
		if !newer {
			continue
		}

		m.logger.Info("Applying migration", map[string]any{
			"version":     s.version,
			"description": s.description,
		})
		if err := s.run(ctx); err != nil {
			m.logger.Error("Migration failed", map[string]any{
				"version": s.version,
				"error":   err.Error(),
			})
			return fmt.Errorf("migration %s failed: %w", s.version, err)
		}
		if err := m.setVersion(ctx, s.version, s.description); err != nil {
			return err
		}
		currentVersion = s.version
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": currentVersion,
	})
	return nil
}

// GetCurrentVersion gets the current migration version, empty for a fresh database
func (m *MigrationManager) GetCurrentVersion(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var version model.MigrationVersion
	result := m.db.WithContext(ctx).Order("applied_at desc").Order("id desc").First(&version)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}

	return version.Version, nil
}

// setVersion records a new migration version
func (m *MigrationManager) setVersion(ctx context.Context, version, description string) error {
	migrationVersion := model.MigrationVersion{
		Version:     version,
		Description: description,
		AppliedAt:   m.timeProvider.Now(),
	}
	return m.db.WithContext(ctx).Create(&migrationVersion).Error
}

// autoMigrateModels auto-migrates database models
func (m *MigrationManager) autoMigrateModels(ctx context.Context) error {
	return m.db.WithContext(ctx).AutoMigrate(
		&model.Merchant{},
		&model.PaymentMethod{},
		&model.Transaction{},
		&model.TransactionSummary{},
		&model.APIRequestLog{},
		&model.LeaseLock{},
	)
}

// versionLess reports whether a sorts before b; the empty version sorts first
func versionLess(a, b string) (bool, error) {
	if a == "" {
		return b != "", nil
	}
	pa, err := parseVersion(a)
	if err != nil {
		return false, err
	}
	pb, err := parseVersion(b)
	if err != nil {
		return false, err
	}
	for i := range pa {
		if pa[i] != pb[i] {
			return pa[i] < pb[i], nil
		}
	}
	return false, nil
}

func parseVersion(v string) ([3]int, error) {
	var parts [3]int
	fields := strings.Split(v, ".")
	if len(fields) != 3 {
		return parts, fmt.Errorf("invalid schema version %q", v)
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return parts, fmt.Errorf("invalid schema version %q: %w", v, err)
		}
		parts[i] = n
	}
	return parts, nil
}
