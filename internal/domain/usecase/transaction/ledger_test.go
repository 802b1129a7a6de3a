package transaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-gateway/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-gateway/internal/domain/port/core"
)

var wib = time.FixedZone("WIB", 7*60*60)

type ledgerFixture struct {
	store    *memStore
	clock    *fakeClock
	logger   *recordingLogger
	ledger   *Ledger
	merchant *entity.Merchant
	bank     *entity.PaymentMethod
	qris     *entity.PaymentMethod
}

func newLedgerFixture(t *testing.T, random coreport.RandomSource, cfg DisambiguatorConfig) *ledgerFixture {
	t.Helper()

	f := &ledgerFixture{
		store:  newMemStore(),
		clock:  newFakeClock(time.Date(2024, 3, 14, 10, 0, 0, 0, wib)),
		logger: &recordingLogger{},
	}

	f.merchant = &entity.Merchant{Username: "tokobudi", Verified: true, Store: entity.StoreProfile{Name: "Toko Budi"}}
	f.store.addMerchant(f.merchant, f.clock.Now())

	f.bank = &entity.PaymentMethod{
		MerchantID:    f.merchant.ID,
		ID:            "bca",
		Name:          "BCA",
		Category:      entity.CategoryBank,
		AccountNumber: "1234567890",
		AccountName:   "Budi",
		Fee:           decimal.NewFromInt(2500),
		FeeType:       entity.FeeFixed,
		Enabled:       true,
	}
	f.qris = &entity.PaymentMethod{
		MerchantID: f.merchant.ID,
		ID:         "qris",
		Name:       "QRIS",
		Category:   entity.CategoryQRIS,
		QRISString: "00020101021126570011ID.DANA.WWW",
		Fee:        decimal.RequireFromString("1.5"),
		FeeType:    entity.FeePersen,
		Enabled:    true,
	}
	f.store.addMethod(f.bank)
	f.store.addMethod(f.qris)

	f.ledger = NewLedger(f.store, NewAmountDisambiguator(random, cfg), nil, f.clock, f.logger, LedgerConfig{})
	return f
}

func TestLedger_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("fixed fee", func(t *testing.T) {
		f := newLedgerFixture(t, &seqRandom{values: []int64{41}}, DisambiguatorConfig{})

		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "order 1", nil)
		require.NoError(t, err)

		assert.Equal(t, int64(50000), tx.BaseAmount)
		assert.Equal(t, int64(2500), tx.FeeAmount)
		assert.Equal(t, int64(42), tx.UniqueNumber)
		assert.Equal(t, int64(52542), tx.Amount)
		assert.Equal(t, entity.StatusPending, tx.Status)
		assert.Equal(t, f.clock.Now().Add(15*time.Minute), tx.ExpiredAt)
		assert.Contains(t, tx.TransactionID, "TRX-")

		sum := f.store.summary(f.merchant.ID)
		assert.Equal(t, int64(1), sum.Pending)
		assert.Equal(t, int64(1), sum.Total)
		assert.Equal(t, int64(52542), sum.UangPending)
	})

	t.Run("percentage fee stays inside the unique band", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})

		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.qris, 20000, "", nil)
		require.NoError(t, err)

		assert.Equal(t, int64(300), tx.FeeAmount)
		assert.GreaterOrEqual(t, tx.Amount, int64(20301))
		assert.LessOrEqual(t, tx.Amount, int64(20799))
		assert.Equal(t, entity.CategoryQRIS, tx.Category)
	})

	t.Run("skips amounts held by pending transactions", func(t *testing.T) {
		f := newLedgerFixture(t, &seqRandom{values: []int64{41, 41, 41, 7}}, DisambiguatorConfig{})

		first, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)
		second, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		assert.Equal(t, int64(52542), first.Amount)
		assert.Equal(t, int64(52508), second.Amount)
	})

	t.Run("allocation exhausted", func(t *testing.T) {
		f := newLedgerFixture(t, &seqRandom{values: []int64{0}}, DisambiguatorConfig{MaxAttempts: 3})

		_, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		_, err = f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrAllocationFailure)

		var allocErr *errs.AllocationError
		require.True(t, errors.As(err, &allocErr))
		assert.Equal(t, 3, allocErr.Attempts)
		assert.Equal(t, int64(1), f.store.summary(f.merchant.ID).Pending)
	})

	t.Run("redraws once after a post-write collision", func(t *testing.T) {
		f := newLedgerFixture(t, &seqRandom{values: []int64{0, 5}}, DisambiguatorConfig{})
		f.store.createErr = errs.ErrDuplicatePendingAmount

		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		assert.Equal(t, int64(52506), tx.Amount)
		assert.Contains(t, f.logger.Warnings(), "Pending amount taken after allocation, redrawing")
		assert.Equal(t, int64(1), f.store.summary(f.merchant.ID).Pending)
	})

	t.Run("fails after a second collision", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})

		// another writer takes the drawn amount between allocation and write
		steal := func(ctx context.Context, tx *entity.Transaction) error {
			rival := *tx
			rival.TransactionID = tx.TransactionID + "-rival"
			return f.store.GetTransactionRepository(ctx).Create(ctx, &rival)
		}

		_, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", steal)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrAllocationFailure)
	})

	t.Run("rejects amount outside method bounds", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		f.bank.MinAmount = 10000

		_, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 5000, "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrAmountOutOfRange)
		assert.True(t, errs.IsValidationError(err))
		assert.Equal(t, int64(0), f.store.summary(f.merchant.ID).Total)
	})

	t.Run("prepare failure writes nothing", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		upstream := errs.NewUpstreamError("qris generator", "generate", errors.New("timeout"))

		_, err := f.ledger.Create(ctx, f.merchant.ID, f.qris, 20000, "", func(context.Context, *entity.Transaction) error {
			return upstream
		})
		require.ErrorIs(t, err, errs.ErrUpstream)
		assert.Equal(t, int64(0), f.store.summary(f.merchant.ID).Total)
	})
}

func TestLedger_ConcurrentCreatesNeverShareAmount(t *testing.T) {
	f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
	ctx := context.Background()

	const workers = 25
	amounts := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
			if assert.NoError(t, err) {
				amounts <- tx.Amount
			}
		}()
	}
	wg.Wait()
	close(amounts)

	seen := map[int64]bool{}
	for a := range amounts {
		assert.False(t, seen[a], "amount %d allocated twice", a)
		seen[a] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, int64(workers), f.store.summary(f.merchant.ID).Pending)
}

func TestLedger_MarkSuccess(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, &seqRandom{values: []int64{41}}, DisambiguatorConfig{})

	tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	first, err := f.ledger.MarkSuccess(ctx, f.merchant.ID, tx.TransactionID, entity.WebhookSource("macrodroid"))
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, entity.StatusSukses, first.Transaction.Status)
	assert.Equal(t, "webhook:macrodroid", first.Transaction.FinalizedBy)
	require.NotNil(t, first.Transaction.FinalizedAt)

	second, err := f.ledger.MarkSuccess(ctx, f.merchant.ID, tx.TransactionID, entity.WebhookSource("macrodroid"))
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, entity.StatusSukses, second.Transaction.Status)

	sum := f.store.summary(f.merchant.ID)
	assert.Equal(t, int64(0), sum.Pending)
	assert.Equal(t, int64(0), sum.UangPending)
	assert.Equal(t, int64(1), sum.Sukses)
	assert.Equal(t, int64(52542), sum.UangSuksesHariIni)
	assert.Equal(t, int64(52542), sum.UangSuksesBulanIni)
	assert.Equal(t, int64(52542), sum.UangSuksesTotal)
	assert.Equal(t, int64(2542), sum.OmsetTotal)
}

func TestLedger_MarkFailedAfterSuccessIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})

	tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
	require.NoError(t, err)
	_, err = f.ledger.MarkSuccess(ctx, f.merchant.ID, tx.TransactionID, entity.WebhookSource("sms"))
	require.NoError(t, err)

	result, err := f.ledger.MarkFailed(ctx, f.merchant.ID, tx.TransactionID, entity.SourceExpiry)
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, entity.StatusSukses, f.store.tx(tx.TransactionID).Status)

	sum := f.store.summary(f.merchant.ID)
	assert.Equal(t, int64(0), sum.Gagal)
	assert.Equal(t, int64(1), sum.Sukses)
}

func TestLedger_FinalizeRace(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]*FinalizeResult, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			results[0], _ = f.ledger.MarkSuccess(ctx, f.merchant.ID, tx.TransactionID, entity.WebhookSource("sms"))
		}()
		go func() {
			defer wg.Done()
			results[1], _ = f.ledger.MarkFailed(ctx, f.merchant.ID, tx.TransactionID, entity.SourceExpiry)
		}()
		wg.Wait()

		require.NotNil(t, results[0])
		require.NotNil(t, results[1])
		assert.NotEqual(t, results[0].Changed, results[1].Changed, "exactly one transition must win")

		sum := f.store.summary(f.merchant.ID)
		assert.Equal(t, int64(0), sum.Pending)
		assert.Equal(t, int64(1), sum.Sukses+sum.Gagal)
	}
}

func TestLedger_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to gagal", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		updated, err := f.ledger.UpdateStatus(ctx, f.merchant.ID, tx.TransactionID, entity.StatusGagal)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusGagal, updated.Status)
		assert.Equal(t, entity.SourceMerchant, updated.FinalizedBy)
		assert.Equal(t, int64(1), f.store.summary(f.merchant.ID).Gagal)
	})

	t.Run("finalized transaction is rejected", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)
		_, err = f.ledger.UpdateStatus(ctx, f.merchant.ID, tx.TransactionID, entity.StatusSukses)
		require.NoError(t, err)

		_, err = f.ledger.UpdateStatus(ctx, f.merchant.ID, tx.TransactionID, entity.StatusGagal)
		require.Error(t, err)
		assert.True(t, errs.IsAlreadyFinalizedError(err))

		var transition *errs.TransitionError
		require.True(t, errors.As(err, &transition))
		assert.Equal(t, "sukses", transition.From)
		assert.Equal(t, "gagal", transition.To)
	})

	t.Run("pending target is invalid", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		_, err := f.ledger.UpdateStatus(ctx, f.merchant.ID, "TRX-x", entity.StatusPending)
		assert.ErrorIs(t, err, errs.ErrInvalidStatus)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		_, err := f.ledger.UpdateStatus(ctx, f.merchant.ID, "TRX-missing", entity.StatusSukses)
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
	})

	t.Run("other merchant cannot edit", func(t *testing.T) {
		f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})
		tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
		require.NoError(t, err)

		_, err = f.ledger.UpdateStatus(ctx, f.merchant.ID+100, tx.TransactionID, entity.StatusSukses)
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
		assert.Equal(t, entity.StatusPending, f.store.tx(tx.TransactionID).Status)
	})
}

func TestLedger_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, &stepRandom{}, DisambiguatorConfig{})

	events := new(mockPublisher)
	events.On("Publish", mock.Anything, mock.MatchedBy(func(e entity.TransactionEvent) bool {
		return e.Type == entity.EventTransactionCreated
	})).Return(nil).Once()
	events.On("Publish", mock.Anything, mock.MatchedBy(func(e entity.TransactionEvent) bool {
		return e.Type == entity.EventTransactionSucceeded && e.Source == "webhook:sms"
	})).Return(errors.New("broker down")).Once()
	f.ledger.events = events

	tx, err := f.ledger.Create(ctx, f.merchant.ID, f.bank, 50000, "", nil)
	require.NoError(t, err)

	result, err := f.ledger.MarkSuccess(ctx, f.merchant.ID, tx.TransactionID, entity.WebhookSource("sms"))
	require.NoError(t, err, "publish failures must not fail the transition")
	assert.True(t, result.Changed)

	// repeated calls publish nothing
	_, err = f.ledger.MarkSuccess(ctx, f.merchant.ID, tx.TransactionID, entity.WebhookSource("sms"))
	require.NoError(t, err)

	events.AssertExpectations(t)
	assert.Contains(t, f.logger.Warnings(), "Failed to publish transaction event")
}
