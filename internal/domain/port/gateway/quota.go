package gateway

import "context"

// QuotaLimiter counts API calls per merchant and day
type QuotaLimiter interface {
	// Consume records one call. It returns the calls left today, or
	// ErrQuotaExhausted once limit is exceeded. A limit of 0 is unlimited.
	Consume(ctx context.Context, merchantID uint64, limit int64) (int64, error)
}
