package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

// LeaseLockRepository implements named expiring locks using GORM
type LeaseLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLeaseLockRepository creates a new LeaseLockRepository instance
func NewLeaseLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *LeaseLockRepository {
	return &LeaseLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// AcquireLock inserts the lease or takes it over when it expired or already belongs to owner.
// The conditional upsert touches no row when another owner holds a live lease.
func (r *LeaseLockRepository) AcquireLock(ctx context.Context, name, owner string, duration time.Duration) error {
	now := r.timeProvider.Now()
	expiresAt := now.Add(duration)

	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO lease_locks (name, owner, locked_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET owner = EXCLUDED.owner,
		    locked_at = EXCLUDED.locked_at,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = EXCLUDED.updated_at
		WHERE lease_locks.expires_at <= ? OR lease_locks.owner = ?`,
		name, owner, now, expiresAt, now, now,
		now, owner,
	)

	if result.Error != nil {
		if isContextError(result.Error) {
			r.logger.Warn("Context timeout acquiring lease", map[string]any{
				"lock":  name,
				"error": result.Error.Error(),
			})
			return fmt.Errorf("lease acquisition timeout: %w", result.Error)
		}
		r.logger.Error("Database error acquiring lease", map[string]any{
			"lock":  name,
			"error": result.Error.Error(),
		})
		return r.errorClassifier.wrap("acquire lease", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.Debug("Lease held by another owner", map[string]any{
			"lock":  name,
			"owner": owner,
		})
		return errs.ErrResourceLocked
	}

	r.logger.Debug("Lease acquired", map[string]any{
		"lock":       name,
		"owner":      owner,
		"expires_at": expiresAt,
	})
	return nil
}

// ReleaseLock deletes the lease if owner still holds it
func (r *LeaseLockRepository) ReleaseLock(ctx context.Context, name, owner string) error {
	result := r.db.WithContext(ctx).
		Where("name = ? AND owner = ?", name, owner).
		Delete(&model.LeaseLock{})

	// the lease expires on its own, a failed release only delays the next holder
	if result.Error != nil && isContextError(result.Error) {
		r.logger.Warn("Context timeout when releasing lease, lease will expire automatically", map[string]any{
			"lock":  name,
			"error": result.Error.Error(),
		})
		return nil
	}
	if result.Error != nil {
		r.logger.Error("Failed to release lease", map[string]any{
			"lock":  name,
			"error": result.Error.Error(),
		})
		return r.errorClassifier.wrap("release lease", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.Debug("No lease to release, it may have expired", map[string]any{
			"lock":  name,
			"owner": owner,
		})
	}
	return nil
}

// CleanupExpiredLocks removes all expired leases
func (r *LeaseLockRepository) CleanupExpiredLocks(ctx context.Context) (int64, error) {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.LeaseLock{})
	if result.Error != nil {
		r.logger.Error("Failed to clean up expired leases", map[string]any{
			"error": result.Error.Error(),
		})
		return 0, r.errorClassifier.wrap("cleanup leases", result.Error)
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Expired leases removed", map[string]any{
			"removed": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}
