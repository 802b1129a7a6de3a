package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/payment-gateway/internal/infrastructure/adapter/repository"
)

var testNow = time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Since(t time.Time) coreport.Duration { return coreport.Duration(c.Now().Sub(t)) }
func (c *testClock) Until(t time.Time) coreport.Duration { return coreport.Duration(t.Sub(c.Now())) }

func (c *testClock) WithTimeout(ctx context.Context, d coreport.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Std())
}

func (c *testClock) NewTicker(d coreport.Duration) coreport.Ticker {
	return &testTicker{t: time.NewTicker(d.Std())}
}

type testTicker struct{ t *time.Ticker }

func (t *testTicker) C() <-chan time.Time { return t.t.C }
func (t *testTicker) Stop()               { t.t.Stop() }

type fixture struct {
	db       *gorm.DB
	clock    *testClock
	logger   coreport.Logger
	merchant *entity.Merchant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{now: testNow}
	log := logger.NewNoopLogger()
	tdb := database.NewTestDBManager(t, log, clock)

	f := &fixture{db: tdb.Manager.DB(), clock: clock, logger: log}
	f.merchant = f.createMerchant(t, "tokobudi")
	return f
}

func (f *fixture) createMerchant(t *testing.T, username string) *entity.Merchant {
	t.Helper()

	m, _, err := entity.NewMerchant(username, username+"@example.com", f.clock)
	require.NoError(t, err)
	m.Verified = true
	require.NoError(t, f.merchants().Create(context.Background(), m))
	return m
}

func (f *fixture) merchants() *repository.MerchantRepository {
	return repository.NewMerchantRepository(f.db, f.clock, f.logger)
}

func (f *fixture) methods() *repository.PaymentMethodRepository {
	return repository.NewPaymentMethodRepository(f.db, f.clock, f.logger)
}

func (f *fixture) transactions() *repository.TransactionRepository {
	return repository.NewTransactionRepository(f.db, f.logger)
}

func (f *fixture) summaries() *repository.SummaryRepository {
	return repository.NewSummaryRepository(f.db, f.logger)
}

func (f *fixture) requestLogs() *repository.RequestLogRepository {
	return repository.NewRequestLogRepository(f.db, f.logger)
}

func (f *fixture) leases() *repository.LeaseLockRepository {
	return repository.NewLeaseLockRepository(f.db, f.clock, f.logger)
}

// pendingTx builds a pending bank transaction with the given total amount
func (f *fixture) pendingTx(t *testing.T, amount int64) *entity.Transaction {
	t.Helper()

	id, err := entity.NewTransactionID()
	require.NoError(t, err)
	now := f.clock.Now()
	return &entity.Transaction{
		MerchantID:    f.merchant.ID,
		TransactionID: id,
		BaseAmount:    amount - 100,
		UniqueNumber:  100,
		Amount:        amount,
		Status:        entity.StatusPending,
		PaymentMethod: "bca",
		Category:      entity.CategoryBank,
		CreatedAt:     now,
		ExpiredAt:     now.Add(15 * time.Minute),
	}
}
