package migration

import (
	"context"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

// PendingAmountIndex keeps the amount of pending transactions unique per merchant
const PendingAmountIndex = "uq_transactions_pending_amount"

// IndexManager creates the indexes AutoMigrate cannot express
type IndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewIndexManager creates a new index manager
func NewIndexManager(db *gorm.DB, logger coreport.Logger) *IndexManager {
	return &IndexManager{
		db:     db,
		logger: logger,
	}
}

func (m *IndexManager) isPostgres() bool {
	return m.db.Dialector.Name() == "postgres"
}

// CreateIndexes creates the partial indexes shared by PostgreSQL and SQLite
func (m *IndexManager) CreateIndexes(ctx context.Context) error {
	db := m.db.WithContext(ctx)

	// the database-level guard behind the allocation loop
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS ` + PendingAmountIndex + `
		ON transactions (merchant_id, amount)
		WHERE status = 'pending'
	`).Error; err != nil {
		m.logger.Error("Failed to create pending amount index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// the expiry sweep only ever scans pending rows
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_pending_expiry
		ON transactions (expired_at)
		WHERE status = 'pending'
	`).Error; err != nil {
		m.logger.Error("Failed to create pending expiry index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_merchant_method_status
		ON transactions (merchant_id, payment_method, status)
	`).Error; err != nil {
		m.logger.Error("Failed to create method usage index", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	m.logger.Info("Transaction indexes created", nil)
	return nil
}

// CreatePostgresConstraints adds CHECK constraints and storage tweaks, PostgreSQL only
func (m *IndexManager) CreatePostgresConstraints(ctx context.Context) error {
	if !m.isPostgres() {
		m.logger.Debug("Skipping PostgreSQL constraints", map[string]any{
			"dialect": m.db.Dialector.Name(),
		})
		return nil
	}
	db := m.db.WithContext(ctx)

	constraints := []struct {
		name string
		sql  string
	}{
		{"chk_transactions_status", `ALTER TABLE transactions ADD CONSTRAINT chk_transactions_status
			CHECK (status IN ('pending', 'sukses', 'gagal'))`},
		{"chk_transactions_amount", `ALTER TABLE transactions ADD CONSTRAINT chk_transactions_amount
			CHECK (amount = base_amount + fee_amount + unique_number AND base_amount > 0 AND unique_number > 0)`},
		{"chk_transactions_finalized", `ALTER TABLE transactions ADD CONSTRAINT chk_transactions_finalized
			CHECK ((status = 'pending') = (finalized_at IS NULL))`},
		{"chk_summaries_non_negative", `ALTER TABLE transaction_summaries ADD CONSTRAINT chk_summaries_non_negative
			CHECK (pending >= 0 AND uang_pending >= 0)`},
	}

	for _, c := range constraints {
		var exists bool
		if err := db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).
			Scan(&exists).Error; err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := db.Exec(c.sql).Error; err != nil {
			m.logger.Error("Failed to add constraint", map[string]any{
				"constraint": c.name,
				"error":      err.Error(),
			})
			return err
		}
	}

	// BRIN suits the append-only created_at column
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_created_at_brin
		ON transactions USING BRIN (created_at)
		WITH (pages_per_range = 32)
	`).Error; err != nil {
		m.logger.Error("Failed to create BRIN index on created_at", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	// status updates rewrite rows in place more often with free space on the page
	if err := db.Exec(`ALTER TABLE transactions SET (fillfactor = 90)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for transactions table", map[string]any{
			"error": err.Error(),
		})
	}
	if err := db.Exec(`ALTER TABLE transaction_summaries SET (fillfactor = 70)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for summaries table", map[string]any{
			"error": err.Error(),
		})
	}

	m.logger.Info("PostgreSQL constraints applied", nil)
	return nil
}
