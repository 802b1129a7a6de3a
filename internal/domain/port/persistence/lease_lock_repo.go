package persistence

import (
	"context"
	"time"
)

// LeaseLockRepository provides named, expiring locks shared by all instances
type LeaseLockRepository interface {
	// AcquireLock takes the named lock for owner, or steals it when it expired.
	// Re-acquiring an own lock extends it.
	//
	// Possible errors:
	// - ErrResourceLocked: If another owner holds a live lease
	// - ErrDatabaseConnection: If database connection fails
	AcquireLock(ctx context.Context, name, owner string, duration time.Duration) error

	// ReleaseLock releases a lock held by owner. Releasing a lost lease is not an error.
	ReleaseLock(ctx context.Context, name, owner string) error

	// CleanupExpiredLocks deletes expired leases and returns how many were removed
	CleanupExpiredLocks(ctx context.Context) (int64, error)
}
