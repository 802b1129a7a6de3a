package persistence

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// RequestLogRepository keeps the latest API calls of each merchant
type RequestLogRepository interface {
	// Append stores a log entry and trims the merchant history to keep entries
	Append(ctx context.Context, log *entity.APIRequestLog, keep int) error

	// ListRecent returns the newest entries first
	ListRecent(ctx context.Context, merchantID uint64, limit int) ([]*entity.APIRequestLog, error)
}
