package merchant

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
)

// memStore keeps merchants and their settings in maps. Only the repositories
// used by the merchant usecase are backed; the rest embed nil interfaces.
type memStore struct {
	mu        sync.Mutex
	merchants map[uint64]*entity.Merchant
	methods   map[string]*entity.PaymentMethod
	summaries map[uint64]*entity.TransactionSummary
	logs      []*entity.APIRequestLog
	pending   map[string]int64 // pending transactions per method key
	nextID    uint64
}

func newMemStore() *memStore {
	return &memStore{
		merchants: map[uint64]*entity.Merchant{},
		methods:   map[string]*entity.PaymentMethod{},
		summaries: map[uint64]*entity.TransactionSummary{},
		pending:   map[string]int64{},
	}
}

func methodKey(merchantID uint64, id string) string {
	return strconv.FormatUint(merchantID, 10) + "/" + id
}

func (s *memStore) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (s *memStore) Commit(context.Context) error                       { return nil }
func (s *memStore) Rollback(context.Context) error                     { return nil }

func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *memStore) GetMerchantRepository(context.Context) persistence.MerchantRepository {
	return memMerchants{s}
}

func (s *memStore) GetPaymentMethodRepository(context.Context) persistence.PaymentMethodRepository {
	return memMethods{s}
}

func (s *memStore) GetTransactionRepository(context.Context) persistence.TransactionRepository {
	return memTransactions{s: s}
}

func (s *memStore) GetSummaryRepository(context.Context) persistence.SummaryRepository {
	return memSummaries{s: s}
}

func (s *memStore) GetRequestLogRepository(context.Context) persistence.RequestLogRepository {
	return memLogs{s}
}

func (s *memStore) GetLeaseLockRepository(context.Context) persistence.LeaseLockRepository {
	return nil
}

type memMerchants struct{ s *memStore }

func (r memMerchants) find(match func(*entity.Merchant) bool) (*entity.Merchant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.merchants {
		if match(m) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errs.ErrMerchantNotFound
}

func (r memMerchants) GetByID(_ context.Context, id uint64) (*entity.Merchant, error) {
	return r.find(func(m *entity.Merchant) bool { return m.ID == id })
}

func (r memMerchants) GetByAPIKeyHash(_ context.Context, hash string) (*entity.Merchant, error) {
	return r.find(func(m *entity.Merchant) bool { return m.APIKeyHash == hash })
}

func (r memMerchants) GetByUsername(_ context.Context, username string) (*entity.Merchant, error) {
	return r.find(func(m *entity.Merchant) bool { return m.Username == username })
}

func (r memMerchants) Create(_ context.Context, m *entity.Merchant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	m.ID = r.s.nextID
	cp := *m
	r.s.merchants[m.ID] = &cp
	return nil
}

func (r memMerchants) Update(_ context.Context, m *entity.Merchant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.merchants[m.ID]; !ok {
		return errs.ErrMerchantNotFound
	}
	cp := *m
	r.s.merchants[m.ID] = &cp
	return nil
}

func (r memMerchants) ListIDs(context.Context) ([]uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]uint64, 0, len(r.s.merchants))
	for id := range r.s.merchants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memMethods struct{ s *memStore }

func (r memMethods) List(_ context.Context, merchantID uint64) ([]*entity.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.PaymentMethod
	for _, m := range r.s.methods {
		if m.MerchantID == merchantID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memMethods) Get(_ context.Context, merchantID uint64, id string) (*entity.PaymentMethod, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.methods[methodKey(merchantID, id)]
	if !ok {
		return nil, errs.ErrMethodNotFound
	}
	cp := *m
	return &cp, nil
}

func (r memMethods) Create(_ context.Context, m *entity.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := methodKey(m.MerchantID, m.ID)
	if _, ok := r.s.methods[key]; ok {
		return errs.ErrDuplicateMethod
	}
	cp := *m
	r.s.methods[key] = &cp
	return nil
}

func (r memMethods) Update(_ context.Context, m *entity.PaymentMethod) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := methodKey(m.MerchantID, m.ID)
	if _, ok := r.s.methods[key]; !ok {
		return errs.ErrMethodNotFound
	}
	cp := *m
	r.s.methods[key] = &cp
	return nil
}

func (r memMethods) Delete(_ context.Context, merchantID uint64, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := methodKey(merchantID, id)
	if _, ok := r.s.methods[key]; !ok {
		return errs.ErrMethodNotFound
	}
	delete(r.s.methods, key)
	return nil
}

type memTransactions struct {
	persistence.TransactionRepository
	s *memStore
}

func (r memTransactions) CountPendingByMethod(_ context.Context, merchantID uint64, methodID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.pending[methodKey(merchantID, methodID)], nil
}

type memSummaries struct {
	persistence.SummaryRepository
	s *memStore
}

func (r memSummaries) Create(_ context.Context, sum *entity.TransactionSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sum
	r.s.summaries[sum.MerchantID] = &cp
	return nil
}

type memLogs struct{ s *memStore }

func (r memLogs) Append(_ context.Context, log *entity.APIRequestLog, keep int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, log)
	var own []int
	for i, l := range r.s.logs {
		if l.MerchantID == log.MerchantID {
			own = append(own, i)
		}
	}
	if drop := len(own) - keep; drop > 0 {
		skip := map[int]bool{}
		for _, i := range own[:drop] {
			skip[i] = true
		}
		kept := r.s.logs[:0]
		for i, l := range r.s.logs {
			if !skip[i] {
				kept = append(kept, l)
			}
		}
		r.s.logs = kept
	}
	return nil
}

func (r memLogs) ListRecent(_ context.Context, merchantID uint64, limit int) ([]*entity.APIRequestLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.APIRequestLog
	for i := len(r.s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.s.logs[i].MerchantID == merchantID {
			out = append(out, r.s.logs[i])
		}
	}
	return out, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time                      { return c.now }
func (c fixedClock) Since(t time.Time) coreport.Duration { return coreport.Duration(c.now.Sub(t)) }
func (c fixedClock) Until(t time.Time) coreport.Duration { return coreport.Duration(t.Sub(c.now)) }
func (c fixedClock) NewTicker(coreport.Duration) coreport.Ticker {
	panic("not used")
}

func (c fixedClock) WithTimeout(ctx context.Context, d coreport.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Std())
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) SetLevel(coreport.LogLevel)   {}
func (l *recordingLogger) GetLevel() coreport.LogLevel  { return coreport.LogLevelDebug }
func (l *recordingLogger) Named(string) coreport.Logger { return l }
func (l *recordingLogger) Debug(string, map[string]any) {}
func (l *recordingLogger) Info(string, map[string]any)  {}
func (l *recordingLogger) Error(string, map[string]any) {}
func (l *recordingLogger) Flush() error                 { return nil }

func (l *recordingLogger) Warn(msg string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

type mockQuota struct{ mock.Mock }

func (m *mockQuota) Consume(ctx context.Context, merchantID uint64, limit int64) (int64, error) {
	args := m.Called(ctx, merchantID, limit)
	return args.Get(0).(int64), args.Error(1)
}

type mockLookup struct{ mock.Mock }

func (m *mockLookup) ListBanks(ctx context.Context) ([]gateway.Bank, error) {
	args := m.Called(ctx)
	banks, _ := args.Get(0).([]gateway.Bank)
	return banks, args.Error(1)
}

func (m *mockLookup) CheckBankAccount(ctx context.Context, bankCode, accountNumber string) (*gateway.AccountHolder, error) {
	args := m.Called(ctx, bankCode, accountNumber)
	holder, _ := args.Get(0).(*gateway.AccountHolder)
	return holder, args.Error(1)
}

func (m *mockLookup) CheckEwalletAccount(ctx context.Context, provider, phone string) (*gateway.AccountHolder, error) {
	args := m.Called(ctx, provider, phone)
	holder, _ := args.Get(0).(*gateway.AccountHolder)
	return holder, args.Error(1)
}
