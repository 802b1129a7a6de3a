package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/config"
)

const keyPrefix = "pgw:quota"

// RedisLimiter keeps one counter per merchant and business day. Each key
// expires shortly after its day ends.
type RedisLimiter struct {
	client       redis.Cmdable
	timeProvider coreport.TimeProvider
}

var _ gateway.QuotaLimiter = (*RedisLimiter)(nil)

// NewRedisClient opens a client and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewRedisLimiter creates a limiter over a redis client
func NewRedisLimiter(client redis.Cmdable, timeProvider coreport.TimeProvider) *RedisLimiter {
	return &RedisLimiter{client: client, timeProvider: timeProvider}
}

// Consume implements gateway.QuotaLimiter
func (l *RedisLimiter) Consume(ctx context.Context, merchantID uint64, limit int64) (int64, error) {
	if limit <= 0 {
		return 0, nil
	}

	now := l.timeProvider.Now()
	key := dayKey(merchantID, now)
	y, m, d := now.Date()
	expireAt := time.Date(y, m, d+1, 1, 0, 0, 0, now.Location())

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, expireAt)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis: consume quota: %w", err)
	}

	used := incr.Val()
	if used > limit {
		return 0, errs.ErrQuotaExhausted
	}
	return limit - used, nil
}

// Used returns today's call count of a merchant
func (l *RedisLimiter) Used(ctx context.Context, merchantID uint64) (int64, error) {
	n, err := l.client.Get(ctx, dayKey(merchantID, l.timeProvider.Now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func dayKey(merchantID uint64, now time.Time) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, merchantID, now.Format("20060102"))
}

// NoopLimiter never limits; used when Redis is disabled
type NoopLimiter struct{}

var _ gateway.QuotaLimiter = NoopLimiter{}

// Consume implements gateway.QuotaLimiter
func (NoopLimiter) Consume(context.Context, uint64, int64) (int64, error) { return 0, nil }
