package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database/migration"
)

// monitorInterval is how often the pool monitor samples the connection pool
const monitorInterval = 30 * time.Second

// Manager manages database connections
type Manager struct {
	config            *Config
	db                *gorm.DB
	logger            coreport.Logger
	migrationMgr      *migration.MigrationManager
	connectionMonitor *ConnectionPoolMonitor
	metrics           *MetricsCollector
	timeProvider      coreport.TimeProvider
}

// NewManager creates a new database manager
func NewManager(config *Config, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	logger = logger.Named("database")
	return &Manager{
		config:       config,
		logger:       logger,
		metrics:      NewMetricsCollector(logger, timeProvider, config.SlowThreshold),
		timeProvider: timeProvider,
	}
}

// Connect establishes a database connection, retrying RetryAttempts times
func (m *Manager) Connect(ctx context.Context) (*gorm.DB, error) {
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	m.logger.Info("Connecting to database", map[string]any{
		"driver": m.config.Driver,
		"host":   m.config.Host,
		"port":   m.config.Port,
		"name":   m.config.Database,
	})

	dialector, err := openDialector(m.config)
	if err != nil {
		return nil, err
	}

	attempts := m.config.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var gormDB *gorm.DB
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			m.logger.Warn("Retrying database connection", map[string]any{
				"attempt": attempt + 1,
				"of":      attempts,
				"delay":   m.config.RetryDelay.String(),
			})
			select {
			case <-time.After(m.config.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		gormDB, err = gorm.Open(dialector, &gorm.Config{
			Logger: NewGormLogger(m.logger, m.timeProvider, m.config.LogLevel, m.config.SlowThreshold),
			NowFunc: func() time.Time {
				return m.timeProvider.Now()
			},
			PrepareStmt: m.config.Driver == DriverPostgres,
		})
		if err == nil {
			err = configurePool(ctx, gormDB, m.config)
		}
		if err == nil {
			break
		}

		m.logger.Error("Failed to connect to database", map[string]any{
			"error":   err.Error(),
			"attempt": attempt + 1,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
	}

	m.logger.Info("Successfully connected to database", map[string]any{
		"driver":         m.config.Driver,
		"max_open_conns": m.config.MaxOpenConns,
		"max_idle_conns": m.config.MaxIdleConns,
		"query_timeout":  m.config.QueryTimeout.String(),
		"isolation":      m.config.IsolationLevel,
	})

	m.db = gormDB
	m.migrationMgr = migration.NewMigrationManager(gormDB, m.logger, m.timeProvider)
	m.connectionMonitor = NewConnectionPoolMonitor(gormDB, m.logger, m.timeProvider)
	if err := m.connectionMonitor.Start(monitorInterval); err != nil {
		m.logger.Warn("Failed to start connection pool monitoring", map[string]any{"error": err.Error()})
	}

	return m.db, nil
}

// DB returns the GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Migrate brings the schema to the current version
func (m *Manager) Migrate(ctx context.Context) error {
	if m.migrationMgr == nil {
		return fmt.Errorf("database is not connected")
	}
	return m.migrationMgr.MigrateAll(ctx)
}

// Close stops monitoring and closes the connection pool
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	m.logger.Info("Closing database connection", nil)

	if m.connectionMonitor != nil {
		m.connectionMonitor.Stop()
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// WithTimeout returns a context bounded by the configured query timeout
func (m *Manager) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.config.QueryTimeout)
}

// CreateUnitOfWork creates a new UnitOfWork bound to the connection
func (m *Manager) CreateUnitOfWork() persistence.UnitOfWork {
	retry := DefaultRetryConfig()
	if m.config.RetryAttempts > 0 {
		retry.MaxRetries = m.config.RetryAttempts
	}

	// sqlite only knows serializable transactions and rejects explicit levels
	isolation, _ := ParseIsolationLevel(m.config.IsolationLevel)
	if m.config.Driver == DriverSQLite {
		isolation = sql.LevelDefault
	}

	return NewUnitOfWork(m.db, m.logger, m.timeProvider, UnitOfWorkOptions{
		Retry:     retry,
		Isolation: isolation,
	}, m.metrics)
}

// MigrationManager returns the migration manager
func (m *Manager) MigrationManager() *migration.MigrationManager {
	return m.migrationMgr
}

// PoolMetrics returns the latest connection pool sample
func (m *Manager) PoolMetrics() ConnectionPoolMetrics {
	if m.connectionMonitor == nil {
		return ConnectionPoolMetrics{}
	}
	return m.connectionMonitor.Metrics()
}
