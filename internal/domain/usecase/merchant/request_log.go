package merchant

import (
	"context"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
)

// RecordAPIRequest appends to the merchant request log, keeping the newest entries
func (u *UseCase) RecordAPIRequest(ctx context.Context, log *entity.APIRequestLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = u.timeProvider.Now()
	}
	return u.uow.GetRequestLogRepository(ctx).Append(ctx, log, entity.MaxRequestLogsPerMerchant)
}

// ListAPIRequests returns the latest request logs, newest first
func (u *UseCase) ListAPIRequests(ctx context.Context, merchantID uint64, limit int) ([]*entity.APIRequestLog, error) {
	if limit <= 0 || limit > entity.MaxRequestLogsPerMerchant {
		limit = entity.MaxRequestLogsPerMerchant
	}
	return u.uow.GetRequestLogRepository(ctx).ListRecent(ctx, merchantID, limit)
}
