package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(tx *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:            tx.ID,
		MerchantID:    tx.MerchantID,
		TransactionID: tx.TransactionID,
		Description:   tx.Description,
		BaseAmount:    tx.BaseAmount,
		FeeAmount:     tx.FeeAmount,
		UniqueNumber:  tx.UniqueNumber,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		PaymentMethod: tx.PaymentMethod,
		Category:      string(tx.Category),
		PaymentURL:    tx.PaymentURL,
		QRBase64:      tx.QRBase64,
		QRURL:         tx.QRURL,
		CreatedAt:     tx.CreatedAt,
		ExpiredAt:     tx.ExpiredAt,
		FinalizedAt:   tx.FinalizedAt,
		FinalizedBy:   tx.FinalizedBy,
	}
}

// modelToEntity converts a database model to a transaction entity
func (r *TransactionRepository) modelToEntity(row *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            row.ID,
		MerchantID:    row.MerchantID,
		TransactionID: row.TransactionID,
		Description:   row.Description,
		BaseAmount:    row.BaseAmount,
		FeeAmount:     row.FeeAmount,
		UniqueNumber:  row.UniqueNumber,
		Amount:        row.Amount,
		Status:        entity.TransactionStatus(row.Status),
		PaymentMethod: row.PaymentMethod,
		Category:      entity.PaymentCategory(row.Category),
		PaymentURL:    row.PaymentURL,
		QRBase64:      row.QRBase64,
		QRURL:         row.QRURL,
		CreatedAt:     row.CreatedAt,
		ExpiredAt:     row.ExpiredAt,
		FinalizedAt:   row.FinalizedAt,
		FinalizedBy:   row.FinalizedBy,
	}
}

func (r *TransactionRepository) toEntities(rows []model.Transaction) []*entity.Transaction {
	txs := make([]*entity.Transaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, r.modelToEntity(&rows[i]))
	}
	return txs
}

// Create saves a new pending transaction and sets its ID
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"transaction_id": transaction.TransactionID,
		"merchant_id":    transaction.MerchantID,
		"amount":         transaction.Amount,
	})

	row := r.entityToModel(transaction)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if r.errorClassifier.IsPendingAmountConflict(err) {
			r.logger.Warn("Pending amount already taken", map[string]any{
				"merchant_id": transaction.MerchantID,
				"amount":      transaction.Amount,
			})
			return errs.NewDatabaseError("create transaction", errs.ErrDuplicatePendingAmount, err)
		}
		r.logger.Error("Failed to create transaction", map[string]any{
			"transaction_id": transaction.TransactionID,
			"merchant_id":    transaction.MerchantID,
			"error":          err.Error(),
		})
		return r.errorClassifier.wrap("create transaction", err)
	}

	transaction.ID = row.ID
	return nil
}

// GetByTransactionID retrieves a transaction by its external transaction ID
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	var row model.Transaction
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, errs.ErrTransactionNotFound
		}
		return nil, r.errorClassifier.wrap("get transaction", err)
	}
	return r.modelToEntity(&row), nil
}

// GetForMerchant retrieves a transaction only if it belongs to the merchant
func (r *TransactionRepository) GetForMerchant(ctx context.Context, merchantID uint64, transactionID string) (*entity.Transaction, error) {
	var row model.Transaction
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND transaction_id = ?", merchantID, transactionID).
		First(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, errs.ErrTransactionNotFound
		}
		return nil, r.errorClassifier.wrap("get merchant transaction", err)
	}
	return r.modelToEntity(&row), nil
}

// PendingAmounts returns the amounts of all pending transactions of a merchant
func (r *TransactionRepository) PendingAmounts(ctx context.Context, merchantID uint64) ([]int64, error) {
	var amounts []int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("merchant_id = ? AND status = ?", merchantID, entity.StatusPending).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, r.errorClassifier.wrap("list pending amounts", err)
	}
	return amounts, nil
}

// FindPendingByAmount returns pending transactions with the exact amount, oldest first
func (r *TransactionRepository) FindPendingByAmount(ctx context.Context, merchantID uint64, amount int64) ([]*entity.Transaction, error) {
	var rows []model.Transaction
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND amount = ? AND status = ?", merchantID, amount, entity.StatusPending).
		Order("created_at").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, r.errorClassifier.wrap("find pending by amount", err)
	}
	return r.toEntities(rows), nil
}

// FinalizeIfPending moves a transaction out of pending with a single conditional update
func (r *TransactionRepository) FinalizeIfPending(
	ctx context.Context,
	transactionID string,
	status entity.TransactionStatus,
	source string,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("transaction_id = ? AND status = ?", transactionID, entity.StatusPending).
		Updates(map[string]any{
			"status":       string(status),
			"finalized_at": at,
			"finalized_by": source,
		})
	if result.Error != nil {
		r.logger.Error("Failed to finalize transaction", map[string]any{
			"transaction_id": transactionID,
			"status":         string(status),
			"error":          result.Error.Error(),
		})
		return false, r.errorClassifier.wrap("finalize transaction", result.Error)
	}

	changed := result.RowsAffected == 1
	r.logger.Debug("Finalize attempted", map[string]any{
		"transaction_id": transactionID,
		"status":         string(status),
		"source":         source,
		"changed":        changed,
	})
	return changed, nil
}

// ListExpiredPending returns pending transactions whose expiry passed, oldest expiry first
func (r *TransactionRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entity.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND expired_at <= ?", entity.StatusPending, now).
		Order("expired_at").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Transaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.errorClassifier.wrap("list expired transactions", err)
	}
	return r.toEntities(rows), nil
}

// ListByMerchant pages through the merchant history, newest first, with the total count
func (r *TransactionRepository) ListByMerchant(
	ctx context.Context,
	merchantID uint64,
	filter persistence.TransactionFilter,
) ([]*entity.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("merchant_id = ?", merchantID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, r.errorClassifier.wrap("count transactions", err)
	}

	page := query.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}

	var rows []model.Transaction
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, r.errorClassifier.wrap("list transactions", err)
	}
	return r.toEntities(rows), total, nil
}

// AllForMerchant loads the complete history of a merchant for reconciliation
func (r *TransactionRepository) AllForMerchant(ctx context.Context, merchantID uint64) ([]*entity.Transaction, error) {
	var rows []model.Transaction
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, r.errorClassifier.wrap("load merchant history", err)
	}
	return r.toEntities(rows), nil
}

// CountPendingByMethod counts pending transactions referencing a method
func (r *TransactionRepository) CountPendingByMethod(ctx context.Context, merchantID uint64, methodID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("merchant_id = ? AND payment_method = ? AND status = ?", merchantID, methodID, entity.StatusPending).
		Count(&count).Error
	if err != nil {
		return 0, r.errorClassifier.wrap("count pending by method", err)
	}
	return count, nil
}
