package transaction

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
	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/persistence"
)

// memStore is an in-memory persistence layer. Do holds one global lock, which
// stands in for the summary row lock of the database.
type memStore struct {
	mu     sync.Mutex // guards the maps
	txLock sync.Mutex // held for the duration of a unit of work

	merchants map[uint64]*entity.Merchant
	methods   map[string]*entity.PaymentMethod
	txs       map[string]*entity.Transaction
	summaries map[uint64]*entity.TransactionSummary
	leases    map[string]string
	nextID    uint64

	createErr   error // returned once by the next transaction insert
	uniqueIndex bool  // enforce one pending amount per merchant on insert
}

func newMemStore() *memStore {
	return &memStore{
		merchants:   map[uint64]*entity.Merchant{},
		methods:     map[string]*entity.PaymentMethod{},
		txs:         map[string]*entity.Transaction{},
		summaries:   map[uint64]*entity.TransactionSummary{},
		leases:      map[string]string{},
		uniqueIndex: true,
	}
}

type inTxKey struct{}

func (s *memStore) Begin(ctx context.Context) (context.Context, error) {
	s.txLock.Lock()
	return context.WithValue(ctx, inTxKey{}, true), nil
}

func (s *memStore) Commit(context.Context) error {
	s.txLock.Unlock()
	return nil
}

func (s *memStore) Rollback(context.Context) error {
	s.txLock.Unlock()
	return nil
}

func (s *memStore) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}
	txCtx, _ := s.Begin(ctx)
	defer s.Commit(txCtx)
	return fn(txCtx)
}

func (s *memStore) GetMerchantRepository(context.Context) persistence.MerchantRepository {
	return memMerchants{s}
}

func (s *memStore) GetPaymentMethodRepository(context.Context) persistence.PaymentMethodRepository {
	return memMethods{s}
}

func (s *memStore) GetTransactionRepository(context.Context) persistence.TransactionRepository {
	return memTransactions{s}
}

func (s *memStore) GetSummaryRepository(context.Context) persistence.SummaryRepository {
	return memSummaries{s}
}

func (s *memStore) GetRequestLogRepository(context.Context) persistence.RequestLogRepository {
	return nil
}

func (s *memStore) GetLeaseLockRepository(context.Context) persistence.LeaseLockRepository {
	return memLeases{s}
}

func (s *memStore) addMerchant(m *entity.Merchant, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.merchants[m.ID] = m
	s.summaries[m.ID] = entity.NewTransactionSummary(m.ID, now)
}

func (s *memStore) addMethod(m *entity.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[methodKey(m.MerchantID, m.ID)] = m
}

func (s *memStore) summary(merchantID uint64) entity.TransactionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.summaries[merchantID]
}

func (s *memStore) tx(id string) entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.txs[id]
}

func methodKey(merchantID uint64, id string) string {
	return strconv.FormatUint(merchantID, 10) + "/" + id
}

type memMerchants struct{ s *memStore }

func (r memMerchants) GetByID(_ context.Context, id uint64) (*entity.Merchant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.merchants[id]
	if !ok {
		return nil, errs.ErrMerchantNotFound
	}
	cp := *m
	return &cp, nil
}

func (r memMerchants) GetByAPIKeyHash(_ context.Context, hash string) (*entity.Merchant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.merchants {
		if m.APIKeyHash == hash {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errs.ErrMerchantNotFound
}

func (r memMerchants) GetByUsername(_ context.Context, username string) (*entity.Merchant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.merchants {
		if m.Username == username {
			cp := *m
			return &cp, nil
		}
	}
	return nil, errs.ErrMerchantNotFound
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
	r.s.addMethod(m)
	return nil
}

func (r memMethods) Update(_ context.Context, m *entity.PaymentMethod) error {
	r.s.addMethod(m)
	return nil
}

func (r memMethods) Delete(_ context.Context, merchantID uint64, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.methods, methodKey(merchantID, id))
	return nil
}

type memTransactions struct{ s *memStore }

func (r memTransactions) Create(_ context.Context, tx *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.createErr; err != nil {
		r.s.createErr = nil
		return err
	}
	if r.s.uniqueIndex {
		for _, other := range r.s.txs {
			if other.MerchantID == tx.MerchantID && other.IsPending() && other.Amount == tx.Amount {
				return errs.ErrDuplicatePendingAmount
			}
		}
	}
	r.s.nextID++
	tx.ID = r.s.nextID
	cp := *tx
	r.s.txs[tx.TransactionID] = &cp
	return nil
}

func (r memTransactions) GetByTransactionID(_ context.Context, id string) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.txs[id]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r memTransactions) GetForMerchant(ctx context.Context, merchantID uint64, id string) (*entity.Transaction, error) {
	tx, err := r.GetByTransactionID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.MerchantID != merchantID {
		return nil, errs.ErrTransactionNotFound
	}
	return tx, nil
}

func (r memTransactions) PendingAmounts(_ context.Context, merchantID uint64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []int64
	for _, tx := range r.s.txs {
		if tx.MerchantID == merchantID && tx.IsPending() {
			out = append(out, tx.Amount)
		}
	}
	return out, nil
}

func (r memTransactions) FindPendingByAmount(_ context.Context, merchantID uint64, amount int64) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for _, tx := range r.s.txs {
		if tx.MerchantID == merchantID && tx.IsPending() && tx.Amount == amount {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memTransactions) FinalizeIfPending(_ context.Context, id string, status entity.TransactionStatus, source string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx, ok := r.s.txs[id]
	if !ok {
		return false, nil
	}
	if !tx.IsPending() {
		return false, nil
	}
	tx.Status = status
	tx.FinalizedAt = &at
	tx.FinalizedBy = source
	return true, nil
}

func (r memTransactions) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for _, tx := range r.s.txs {
		if tx.IsPending() && tx.IsExpired(now) {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiredAt.Before(out[j].ExpiredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memTransactions) ListByMerchant(ctx context.Context, merchantID uint64, filter persistence.TransactionFilter) ([]*entity.Transaction, int64, error) {
	all, _ := r.AllForMerchant(ctx, merchantID)
	var out []*entity.Transaction
	for _, tx := range all {
		if filter.Status == "" || string(tx.Status) == filter.Status {
			out = append(out, tx)
		}
	}
	total := int64(len(out))
	if filter.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[filter.Offset:]
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r memTransactions) AllForMerchant(_ context.Context, merchantID uint64) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Transaction
	for _, tx := range r.s.txs {
		if tx.MerchantID == merchantID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memTransactions) CountPendingByMethod(_ context.Context, merchantID uint64, methodID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, tx := range r.s.txs {
		if tx.MerchantID == merchantID && tx.PaymentMethod == methodID && tx.IsPending() {
			n++
		}
	}
	return n, nil
}

type memSummaries struct{ s *memStore }

func (r memSummaries) Get(_ context.Context, merchantID uint64) (*entity.TransactionSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum, ok := r.s.summaries[merchantID]
	if !ok {
		return nil, errs.ErrMerchantNotFound
	}
	cp := *sum
	return &cp, nil
}

func (r memSummaries) GetForUpdate(ctx context.Context, merchantID uint64) (*entity.TransactionSummary, error) {
	return r.Get(ctx, merchantID)
}

func (r memSummaries) Create(_ context.Context, sum *entity.TransactionSummary) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *sum
	r.s.summaries[sum.MerchantID] = &cp
	return nil
}

func (r memSummaries) Save(ctx context.Context, sum *entity.TransactionSummary) error {
	return r.Create(ctx, sum)
}

type memLeases struct{ s *memStore }

func (r memLeases) AcquireLock(_ context.Context, name, owner string, _ time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if held, ok := r.s.leases[name]; ok && held != owner {
		return errs.ErrResourceLocked
	}
	r.s.leases[name] = owner
	return nil
}

func (r memLeases) ReleaseLock(_ context.Context, name, owner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.leases[name] == owner {
		delete(r.s.leases, name)
	}
	return nil
}

func (r memLeases) CleanupExpiredLocks(context.Context) (int64, error) {
	return 0, nil
}

// fakeClock is a settable time provider
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Since(t time.Time) coreport.Duration {
	return coreport.Duration(c.Now().Sub(t))
}

func (c *fakeClock) Until(t time.Time) coreport.Duration {
	return coreport.Duration(t.Sub(c.Now()))
}

func (c *fakeClock) WithTimeout(ctx context.Context, d coreport.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.Std())
}

func (c *fakeClock) NewTicker(coreport.Duration) coreport.Ticker {
	return &fakeTicker{ch: make(chan time.Time, 1)}
}

type fakeTicker struct{ ch chan time.Time }

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

// seqRandom returns the queued values in order, then repeats the last one
type seqRandom struct {
	mu     sync.Mutex
	values []int64
}

func (r *seqRandom) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v % n
}

// stepRandom walks 0, 1, 2, ... so concurrent draws rarely repeat
type stepRandom struct {
	mu   sync.Mutex
	next int64
}

func (r *stepRandom) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.next % n
	r.next++
	return v
}

// recordingLogger keeps warnings for assertions
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
}

func (l *recordingLogger) SetLevel(coreport.LogLevel)   {}
func (l *recordingLogger) GetLevel() coreport.LogLevel  { return coreport.LogLevelDebug }
func (l *recordingLogger) Named(string) coreport.Logger { return l }
func (l *recordingLogger) Debug(string, map[string]any) {}
func (l *recordingLogger) Info(string, map[string]any)  {}
func (l *recordingLogger) Flush() error                 { return nil }

func (l *recordingLogger) Warn(msg string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) Error(msg string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Name() string { return "mock" }

func (m *mockNotifier) NotifyPaymentReceived(ctx context.Context, merchant *entity.Merchant, tx *entity.Transaction) error {
	args := m.Called(ctx, merchant, tx)
	return args.Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, event entity.TransactionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type mockQR struct{ mock.Mock }

func (m *mockQR) GenerateQR(ctx context.Context, payload string, amount int64) (string, error) {
	args := m.Called(ctx, payload, amount)
	return args.String(0), args.Error(1)
}

type mockUploader struct{ mock.Mock }

func (m *mockUploader) UploadImage(ctx context.Context, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, data)
	return args.String(0), args.Error(1)
}

// plainCodec prefixes ids so tests can build tokens by hand
type plainCodec struct{}

func (plainCodec) Encode(id string) (string, error) { return "tok-" + id, nil }

func (plainCodec) Decode(token string) (string, bool) {
	if len(token) <= 4 || token[:4] != "tok-" {
		return "", false
	}
	return token[4:], true
}
