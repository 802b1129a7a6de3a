package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

const (
	poolPingTimeout = 5 * time.Second
	// pool usage above this share of MaxOpenConns is logged as a warning
	poolPressureRatio = 0.8
)

// ConnectionPoolMetrics is one sample of the database pool
type ConnectionPoolMetrics struct {
	OpenConnections    int
	IdleConnections    int
	MaxOpenConnections int
	InUse              int
	WaitCount          int64
	WaitDuration       time.Duration
	Healthy            bool
	LastError          string
	SampledAt          time.Time
}

// ConnectionPoolMonitor pings the database on a ticker and keeps the latest sample
type ConnectionPoolMonitor struct {
	db     *gorm.DB
	logger coreport.Logger
	clock  coreport.TimeProvider

	mu     sync.RWMutex
	latest ConnectionPoolMetrics

	stop     chan struct{}
	stopOnce sync.Once
}

// NewConnectionPoolMonitor creates a monitor; call Start to begin sampling
func NewConnectionPoolMonitor(db *gorm.DB, logger coreport.Logger, clock coreport.TimeProvider) *ConnectionPoolMonitor {
	return &ConnectionPoolMonitor{
		db:     db,
		logger: logger.Named("pool"),
		clock:  clock,
		stop:   make(chan struct{}),
	}
}

// Start takes one sample synchronously and then one per interval until Stop
func (m *ConnectionPoolMonitor) Start(interval time.Duration) error {
	if err := m.sample(); err != nil {
		return err
	}

	ticker := m.clock.NewTicker(coreport.Duration(interval))
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C():
				if err := m.sample(); err != nil {
					m.logger.Error("Failed to sample connection pool", map[string]any{
						"error": err.Error(),
					})
				}
			case <-m.stop:
				return
			}
		}
	}()
	return nil
}

// Stop ends sampling. It is safe to call more than once.
func (m *ConnectionPoolMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Metrics returns the latest sample, or the zero value before the first one
func (m *ConnectionPoolMonitor) Metrics() ConnectionPoolMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

func (m *ConnectionPoolMonitor) sample() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	ctx, cancel := m.clock.WithTimeout(context.Background(), coreport.Duration(poolPingTimeout))
	defer cancel()

	metrics := ConnectionPoolMetrics{Healthy: true, SampledAt: m.clock.Now()}
	if err := sqlDB.PingContext(ctx); err != nil {
		metrics.Healthy = false
		metrics.LastError = NewErrorMapper().MapError(err, "ping").Error()
		m.logger.Error("Database ping failed", map[string]any{
			"error": err.Error(),
		})
	}

	stats := sqlDB.Stats()
	metrics.OpenConnections = stats.OpenConnections
	metrics.IdleConnections = stats.Idle
	metrics.MaxOpenConnections = stats.MaxOpenConnections
	metrics.InUse = stats.InUse
	metrics.WaitCount = stats.WaitCount
	metrics.WaitDuration = stats.WaitDuration

	m.mu.Lock()
	m.latest = metrics
	m.mu.Unlock()

	if stats.MaxOpenConnections > 1 && float64(stats.InUse) > float64(stats.MaxOpenConnections)*poolPressureRatio {
		m.logger.Warn("Database connection pool under pressure", map[string]any{
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"wait_count": stats.WaitCount,
			"wait_time":  stats.WaitDuration.String(),
		})
	}
	return nil
}
