package repository

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/model"
)

// RequestLogRepository implements persistence.RequestLogRepository using GORM
type RequestLogRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewRequestLogRepository creates a new RequestLogRepository instance
func NewRequestLogRepository(db *gorm.DB, logger coreport.Logger) *RequestLogRepository {
	return &RequestLogRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// jsonColumn stores valid JSON as is and anything else as a JSON string
func jsonColumn(body []byte) datatypes.JSON {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	quoted, _ := json.Marshal(string(body))
	return datatypes.JSON(quoted)
}

// Append stores a log entry and deletes everything older than the newest keep entries
func (r *RequestLogRepository) Append(ctx context.Context, log *entity.APIRequestLog, keep int) error {
	row := model.APIRequestLog{
		MerchantID:     log.MerchantID,
		Method:         log.Method,
		Endpoint:       log.Endpoint,
		IPAddress:      log.IPAddress,
		RequestBody:    jsonColumn(log.RequestBody),
		ResponseStatus: log.ResponseStatus,
		ResponseBody:   jsonColumn(log.ResponseBody),
		CreatedAt:      log.CreatedAt,
	}

	db := r.db.WithContext(ctx)
	if err := db.Create(&row).Error; err != nil {
		return r.errorClassifier.wrap("append request log", err)
	}
	log.ID = row.ID

	if keep <= 0 {
		return nil
	}

	newest := db.Model(&model.APIRequestLog{}).
		Select("id").
		Where("merchant_id = ?", log.MerchantID).
		Order("created_at DESC").Order("id DESC").
		Limit(keep)
	result := db.
		Where("merchant_id = ? AND id NOT IN (?)", log.MerchantID, newest).
		Delete(&model.APIRequestLog{})
	if result.Error != nil {
		// the entry is stored, an oversized history is harmless until the next append
		r.logger.Warn("Failed to trim request log", map[string]any{
			"merchant_id": log.MerchantID,
			"error":       result.Error.Error(),
		})
		return nil
	}
	if result.RowsAffected > 0 {
		r.logger.Debug("Request log trimmed", map[string]any{
			"merchant_id": log.MerchantID,
			"removed":     result.RowsAffected,
		})
	}
	return nil
}

// ListRecent returns the newest entries first
func (r *RequestLogRepository) ListRecent(ctx context.Context, merchantID uint64, limit int) ([]*entity.APIRequestLog, error) {
	query := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.APIRequestLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, r.errorClassifier.wrap("list request logs", err)
	}

	logs := make([]*entity.APIRequestLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, &entity.APIRequestLog{
			ID:             row.ID,
			MerchantID:     row.MerchantID,
			Method:         row.Method,
			Endpoint:       row.Endpoint,
			IPAddress:      row.IPAddress,
			RequestBody:    []byte(row.RequestBody),
			ResponseStatus: row.ResponseStatus,
			ResponseBody:   []byte(row.ResponseBody),
			CreatedAt:      row.CreatedAt,
		})
	}
	return logs, nil
}
