package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

// LegacySource marks transactions finalized before the source was recorded
const LegacySource = "legacy"

// BackfillFinalizedBy adds the finalization columns to older schemas and fills them for terminal rows
type BackfillFinalizedBy struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewBackfillFinalizedBy creates a new migration instance
func NewBackfillFinalizedBy(db *gorm.DB, logger coreport.Logger) *BackfillFinalizedBy {
	return &BackfillFinalizedBy{
		db:     db,
		logger: logger,
	}
}

// Run executes the migration
func (m *BackfillFinalizedBy) Run(ctx context.Context) error {
	db := m.db.WithContext(ctx)
	migrator := db.Migrator()

	for _, column := range []string{"FinalizedAt", "FinalizedBy"} {
		if migrator.HasColumn(&model.Transaction{}, column) {
			continue
		}
		if err := migrator.AddColumn(&model.Transaction{}, column); err != nil {
			m.logger.Error("Failed to add column", map[string]any{
				"column": column,
				"error":  err.Error(),
			})
			return err
		}
	}

	// created_at is the closest known finalization time for old rows
	result := db.Exec(`
		UPDATE transactions
		SET finalized_by = ?, finalized_at = COALESCE(finalized_at, created_at)
		WHERE status <> 'pending' AND (finalized_by IS NULL OR finalized_by = '')`,
		LegacySource,
	)
	if result.Error != nil {
		m.logger.Error("Failed to backfill finalization source", map[string]any{
			"error": result.Error.Error(),
		})
		return result.Error
	}

	m.logger.Info("Finalization source backfilled", map[string]any{
		"rows": result.RowsAffected,
	})
	return nil
}
