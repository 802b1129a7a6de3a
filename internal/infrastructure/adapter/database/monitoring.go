package database

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// MetricsCollector times database work and reports the slow parts
type MetricsCollector struct {
	logger        coreport.Logger
	timeProvider  coreport.TimeProvider
	slowThreshold time.Duration
}

// NewMetricsCollector creates a new metrics collector; a zero threshold disables slow warnings
func NewMetricsCollector(logger coreport.Logger, timeProvider coreport.TimeProvider, slowThreshold time.Duration) *MetricsCollector {
	return &MetricsCollector{
		logger:        logger,
		timeProvider:  timeProvider,
		slowThreshold: slowThreshold,
	}
}

// Measure runs fn and warns when it took longer than the threshold
func (c *MetricsCollector) Measure(ctx context.Context, operation string, fn func() error) error {
	if c == nil {
		return fn()
	}

	start := c.timeProvider.Now()
	err := fn()
	elapsed := c.timeProvider.Since(start).Std()

	if c.slowThreshold > 0 && elapsed > c.slowThreshold {
		fields := map[string]any{
			"operation":   operation,
			"duration_ms": elapsed.Milliseconds(),
			"failed":      err != nil,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		c.logger.Warn("Slow database operation detected", fields)
	}
	return err
}
